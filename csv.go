package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrMalformedRow = errors.New("malformed row")

// Txn is one parsed bank export row. Negative amount = outflow.
type Txn struct {
	Seq     int
	Date    time.Time
	Name    string
	Comment string
	Amount  decimal.Decimal
}

// Description combines counterparty name and free-text comment, the string
// all classification rules match against.
func (t Txn) Description() string {
	if len(t.Comment) == 0 {
		return t.Name
	}
	return t.Name + " - " + t.Comment
}

// ID is the stable transaction id embedded in the journal description.
func (t Txn) ID() string {
	return fmt.Sprintf("%d-%d", t.Date.Year(), t.Seq)
}

// Column headers of the ING CSV export.
const (
	colDate      = "Datum"
	colName      = "Naam / Omschrijving"
	colDirection = "Af Bij"
	colAmount    = "Bedrag (EUR)"
	colComment   = "Mededelingen"
)

var ingDateFormats = []string{"20060102", "02-01-2006", "2006-01-02"}

func parseINGDate(col string) (time.Time, error) {
	for _, f := range ingDateFormats {
		if tm, err := time.Parse(f, col); err == nil {
			return time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrMalformedRow, "unparseable date %q", col)
}

// parseINGAmount reads a decimal-comma amount like "1.234,56".
func parseINGAmount(col string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(col, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrMalformedRow, "unparseable amount %q", col)
	}
	return d, nil
}

// ReadTransactions parses an ING export. Rows come back sorted by date with
// sequence numbers assigned by position, which is what the import cursor
// keys on. Any malformed row aborts the whole read: downstream sequencing
// depends on complete, ordered input, so silently skipping is not an option.
func ReadTransactions(r io.Reader) ([]Txn, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true // bank exports are sloppy about quoting

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read CSV header")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colDate, colName, colDirection, colAmount, colComment} {
		if _, ok := idx[required]; !ok {
			return nil, errors.Errorf("CSV is missing required column %q", required)
		}
	}

	var txns []Txn
	for line := 2; ; line++ {
		cols, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read CSV line %d", line)
		}

		var t Txn
		if t.Date, err = parseINGDate(cols[idx[colDate]]); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if t.Amount, err = parseINGAmount(cols[idx[colAmount]]); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		switch dir := strings.TrimSpace(cols[idx[colDirection]]); dir {
		case "Af":
			t.Amount = t.Amount.Neg()
		case "Bij":
			// inflow, amount stays positive
		default:
			return nil, errors.Wrapf(ErrMalformedRow, "line %d: unknown direction %q", line, dir)
		}
		t.Name = strings.TrimSpace(cols[idx[colName]])
		t.Comment = strings.TrimSpace(cols[idx[colComment]])
		txns = append(txns, t)
	}

	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	for i := range txns {
		txns[i].Seq = i
	}
	return txns, nil
}

// pendingAfter returns the suffix of date-sorted transactions that the
// import cursor has not committed yet.
func pendingAfter(txns []Txn, lastSeq int) []Txn {
	for i, t := range txns {
		if t.Seq > lastSeq {
			return txns[i:]
		}
	}
	return nil
}
