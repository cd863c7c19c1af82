package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorGetDefault(t *testing.T) {
	cs, err := OpenCursorStore(filepath.Join(t.TempDir(), "journal.cursors"))
	require.NoError(t, err)
	assert.Equal(t, -1, cs.Get("jan.csv"))
}

func TestCursorAdvancePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.cursors")

	cs, err := OpenCursorStore(path)
	require.NoError(t, err)
	require.NoError(t, cs.Advance("jan.csv", 4))
	assert.Equal(t, 4, cs.Get("jan.csv"))

	reopened, err := OpenCursorStore(path)
	require.NoError(t, err)
	assert.Equal(t, 4, reopened.Get("jan.csv"))
	assert.Equal(t, -1, reopened.Get("feb.csv"))
}

func TestCursorPreservesUnrelatedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.cursors")
	require.NoError(t, os.WriteFile(path, []byte("feb.csv:7\n"), 0o644))

	cs, err := OpenCursorStore(path)
	require.NoError(t, err)
	require.NoError(t, cs.Advance("jan.csv", 3))

	reopened, err := OpenCursorStore(path)
	require.NoError(t, err)
	assert.Equal(t, 7, reopened.Get("feb.csv"))
	assert.Equal(t, 3, reopened.Get("jan.csv"))
}

func TestCursorMalformedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.cursors")
	require.NoError(t, os.WriteFile(path, []byte("jan.csv:notanumber\n"), 0o644))

	_, err := OpenCursorStore(path)
	require.Error(t, err)
}

func TestPendingAfter(t *testing.T) {
	txns := make([]Txn, 6)
	for i := range txns {
		txns[i].Seq = i
		txns[i].Date = time.Date(2023, 1, 1+i, 0, 0, 0, 0, time.UTC)
	}

	pending := pendingAfter(txns, 3)
	require.Len(t, pending, 2)
	assert.Equal(t, 4, pending[0].Seq)
	assert.Equal(t, 5, pending[1].Seq)

	assert.Len(t, pendingAfter(txns, -1), 6)
	assert.Empty(t, pendingAfter(txns, 5))
}
