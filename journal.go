package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	stamp          = "2006/01/02"
	currencySymbol = "€"

	// Tag attached to entries the user declined to classify, so they can be
	// grepped out of the journal for manual review later.
	unknownTag = "UNKNOWN_TRANSACTION"
)

var (
	ErrUnbalancedEntry      = errors.New("postings do not sum to zero")
	ErrInsufficientPostings = errors.New("entry needs at least two postings")
)

// Posting is one leg of a double-entry: an account and a signed amount.
type Posting struct {
	Account Account
	Amount  decimal.Decimal
}

// JournalEntry is a finalized, balanced transaction ready to be rendered.
// It is constructed once by the resolution flow and never mutated after.
type JournalEntry struct {
	Date        time.Time
	Description string
	Postings    []Posting
	Tags        []string
}

// Validate checks the double-entry invariants. It must be called before
// rendering; Render refuses to format an entry that fails here.
func (e *JournalEntry) Validate() error {
	if len(e.Postings) < 2 {
		return errors.Wrapf(ErrInsufficientPostings, "entry %q has %d", e.Description, len(e.Postings))
	}
	if len(e.Postings) > 4 {
		return errors.Errorf("entry %q has %d postings, at most 4 allowed", e.Description, len(e.Postings))
	}
	sum := decimal.Zero
	for _, p := range e.Postings {
		sum = sum.Add(p.Amount)
	}
	if !sum.IsZero() {
		return errors.Wrapf(ErrUnbalancedEntry, "entry %q sums to %s", e.Description, sum.StringFixed(2))
	}
	return nil
}

// Render formats the entry for the plain-text journal:
//
//	2023/01/05 2023-4 - Albert Heijn 1234;   UNKNOWN_TRANSACTION:
//	    Assets:Bank:Payment account             €-9.50
//	    Expenses:Food and groceries             €9.50
//
// Amounts always carry two decimals with a fixed decimal point, independent
// of the host locale.
func (e *JournalEntry) Render() (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(e.Date.Format(stamp))
	b.WriteString(" ")
	b.WriteString(e.Description)
	if len(e.Tags) > 0 {
		b.WriteString(";   ")
		for _, t := range e.Tags {
			b.WriteString(t + ": ")
		}
	}
	b.WriteString("\n")
	for _, p := range e.Postings {
		fmt.Fprintf(&b, "    %-40s%s%s\n", p.Account.Label, currencySymbol, p.Amount.StringFixed(2))
	}
	b.WriteString("\n")
	return b.String(), nil
}

// parsePosting reads an account label and amount back out of a rendered
// posting line. Used when learning from the existing journal.
func parsePosting(line string) (label string, amount decimal.Decimal, ok bool) {
	i := strings.LastIndex(line, currencySymbol)
	if i < 0 {
		return "", decimal.Zero, false
	}
	label = strings.TrimSpace(line[:i])
	amount, err := decimal.NewFromString(strings.TrimSpace(line[i+len(currencySymbol):]))
	if err != nil || len(label) == 0 {
		return "", decimal.Zero, false
	}
	return label, amount, true
}

// JournalWriter appends rendered entries to the output journal. Every entry
// is flushed to disk before WriteEntry returns, so the import cursor can be
// advanced knowing the entry survives a crash.
type JournalWriter struct {
	f *os.File
}

// OpenJournal opens (or creates) the output journal for appending and writes
// the per-run header comment. Reports whether the journal was newly created.
func OpenJournal(path string, now time.Time) (*JournalWriter, bool, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, errors.Wrapf(err, "unable to open journal %v", path)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, errors.Wrapf(err, "unable to stat journal %v", path)
	}
	created := st.Size() == 0
	verb := "continued"
	if created {
		verb = "created"
	}
	if _, err := fmt.Fprintf(f, "; journal %s %s by ing2ledger\n\n", verb, now.Format("2006-01-02 15:04:05")); err != nil {
		f.Close()
		return nil, false, errors.Wrapf(err, "unable to write journal header")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, false, errors.Wrapf(err, "unable to flush journal header")
	}
	return &JournalWriter{f: f}, created, nil
}

func (w *JournalWriter) WriteEntry(e *JournalEntry) error {
	s, err := e.Render()
	if err != nil {
		return err
	}
	if _, err := w.f.WriteString(s); err != nil {
		return errors.Wrapf(err, "unable to append entry %q", e.Description)
	}
	// The cursor must only move for entries that are actually on disk.
	return errors.Wrapf(w.f.Sync(), "unable to flush entry %q", e.Description)
}

func (w *JournalWriter) Close() error {
	return w.f.Close()
}
