package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ValueSnapshot is one row of a Meesman fund export. The fund reports the
// total position value per date instead of individual transactions, so
// entries are derived by diffing successive snapshots.
type ValueSnapshot struct {
	Seq   int
	Date  time.Time
	Value decimal.Decimal
}

const (
	colSnapshotDate  = "Date"
	colSnapshotValue = "Value"
)

// ReadValueSnapshots parses a Meesman value export. Rows come back sorted by
// date with sequence numbers assigned by position, same contract as
// ReadTransactions.
func ReadValueSnapshots(r io.Reader) ([]ValueSnapshot, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read CSV header")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colSnapshotDate, colSnapshotValue} {
		if _, ok := idx[required]; !ok {
			return nil, errors.Errorf("CSV is missing required column %q", required)
		}
	}

	var snaps []ValueSnapshot
	for line := 2; ; line++ {
		cols, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read CSV line %d", line)
		}

		var s ValueSnapshot
		if s.Date, err = parseINGDate(cols[idx[colSnapshotDate]]); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if s.Value, err = parseINGAmount(cols[idx[colSnapshotValue]]); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		snaps = append(snaps, s)
	}

	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Date.Before(snaps[j].Date) })
	for i := range snaps {
		snaps[i].Seq = i
	}
	return snaps, nil
}

// importFundValues diffs snapshots into value-change entries and appends the
// ones past the cursor watermark. The first snapshot is the baseline and
// produces no entry; diffs are always computed over the full history so the
// running value stays correct across incremental runs.
func importFundValues(snaps []ValueSnapshot, w *JournalWriter, cs *CursorStore, sourceID string) (int, error) {
	if len(snaps) == 0 {
		return 0, nil
	}
	last := cs.Get(sourceID)
	lastValue := snaps[0].Value

	var written int
	for i := 1; i < len(snaps); i++ {
		s := snaps[i]
		diff := s.Value.Sub(lastValue)
		lastValue = s.Value
		if s.Seq <= last {
			continue
		}

		entry := JournalEntry{
			Date: s.Date,
			Description: fmt.Sprintf("%d-M-%d - Meesman value update %s",
				s.Date.Year(), i-1, s.Date.Format("2006-01-02")),
			Postings: []Posting{
				{Account: mustAccount("Assets:Investment fund"), Amount: diff},
				{Account: mustAccount("Income:Investment fund return"), Amount: diff.Neg()},
			},
		}
		if err := w.WriteEntry(&entry); err != nil {
			return written, err
		}
		if err := cs.Advance(sourceID, s.Seq); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// runMeesmanImport is the -meesman driver. No classification and no prompts:
// every value change maps to the same pair of accounts.
func runMeesmanImport(cursorPath string) {
	in, err := os.Open(*csvFile)
	checkf(err, "Unable to open csv file: %v", *csvFile)
	snaps, err := ReadValueSnapshots(in)
	in.Close()
	checkf(err, "Unable to parse csv file: %v", *csvFile)

	cs, err := OpenCursorStore(cursorPath)
	checkf(err, "Unable to open cursor store: %v", cursorPath)
	sourceID := filepath.Base(*csvFile)

	w, created, err := OpenJournal(*output, time.Now())
	checkf(err, "Unable to open journal: %v", *output)
	defer w.Close()
	if created {
		fmt.Printf("Journal created: %v\n", *output)
	}

	n, err := importFundValues(snaps, w, cs, sourceID)
	checkf(err, "Import failed; cursor for %v stays at the last committed entry", sourceID)
	fmt.Printf("%d fund value entries written to %s (from %d snapshots).\n",
		n, *output, len(snaps))
}
