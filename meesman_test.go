package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meesmanHeader = `"Date","Value"`

func TestReadValueSnapshots(t *testing.T) {
	in := meesmanHeader + "\n" +
		`"2023-02-05","10.250,50"` + "\n" +
		`"2023-01-05","10.000,00"` + "\n"

	snaps, err := ReadValueSnapshots(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Equal(t, 0, snaps[0].Seq)
	assert.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), snaps[0].Date)
	assert.Equal(t, "10000.00", snaps[0].Value.StringFixed(2))
	assert.Equal(t, 1, snaps[1].Seq)
	assert.Equal(t, "10250.50", snaps[1].Value.StringFixed(2))
}

func TestReadValueSnapshotsMalformedValue(t *testing.T) {
	in := meesmanHeader + "\n" + `"2023-01-05","lots"` + "\n"
	_, err := ReadValueSnapshots(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
}

func TestReadValueSnapshotsMissingColumn(t *testing.T) {
	in := `"Date"` + "\n" + `"2023-01-05"` + "\n"
	_, err := ReadValueSnapshots(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func importFund(t *testing.T, dir, csvData, sourceID string) int {
	t.Helper()

	snaps, err := ReadValueSnapshots(strings.NewReader(csvData))
	require.NoError(t, err)

	journalPath := filepath.Join(dir, "journal.ledger")
	cs, err := OpenCursorStore(journalPath + ".cursors")
	require.NoError(t, err)

	w, _, err := OpenJournal(journalPath, time.Now())
	require.NoError(t, err)
	defer w.Close()

	n, err := importFundValues(snaps, w, cs, sourceID)
	require.NoError(t, err)
	return n
}

func TestFundValueImport(t *testing.T) {
	dir := t.TempDir()
	in := meesmanHeader + "\n" +
		`"2023-01-05","10.000,00"` + "\n" +
		`"2023-02-05","10.050,50"` + "\n" +
		`"2023-03-05","10.025,25"` + "\n"

	// The first snapshot is the baseline, so three rows yield two entries.
	assert.Equal(t, 2, importFund(t, dir, in, "meesman.csv"))

	journal, err := os.ReadFile(filepath.Join(dir, "journal.ledger"))
	require.NoError(t, err)
	assert.Contains(t, string(journal), "2023/02/05 2023-M-0 - Meesman value update 2023-02-05")
	assert.Contains(t, string(journal), "Assets:Investment fund                  €50.50")
	assert.Contains(t, string(journal), "Income:Investment fund return           €-50.50")
	assert.Contains(t, string(journal), "2023/03/05 2023-M-1 - Meesman value update 2023-03-05")
	assert.Contains(t, string(journal), "€-25.25")
}

func TestFundValueImportIdempotence(t *testing.T) {
	dir := t.TempDir()
	base := meesmanHeader + "\n" +
		`"2023-01-05","10.000,00"` + "\n" +
		`"2023-02-05","10.050,50"` + "\n"
	grown := base + `"2023-03-05","10.150,50"` + "\n"

	assert.Equal(t, 1, importFund(t, dir, base, "meesman.csv"))
	assert.Zero(t, importFund(t, dir, base, "meesman.csv"))

	// An appended snapshot is diffed against the last committed value.
	assert.Equal(t, 1, importFund(t, dir, grown, "meesman.csv"))
	assert.Zero(t, importFund(t, dir, grown, "meesman.csv"))

	journal, err := os.ReadFile(filepath.Join(dir, "journal.ledger"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(journal), "2023-M-0"))
	assert.Equal(t, 1, strings.Count(string(journal), "2023-M-1"))
	assert.Contains(t, string(journal), "€100.00")
}
