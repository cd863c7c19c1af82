package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CursorStore tracks, per source file, the last transaction sequence that
// made it into the journal. It lives in a plain-text sidecar of key:value
// lines next to the journal, so re-running an import on the same export is
// idempotent.
type CursorStore struct {
	path string
	seqs map[string]int
}

func OpenCursorStore(path string) (*CursorStore, error) {
	cs := &CursorStore{path: path, seqs: make(map[string]int)}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cs, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open cursor store %v", path)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		// The value follows the last colon; source names may contain colons.
		i := strings.LastIndex(line, ":")
		if i < 0 {
			return nil, errors.Errorf("cursor store %v has malformed line %q", path, line)
		}
		seq, err := strconv.Atoi(strings.TrimSpace(line[i+1:]))
		if err != nil {
			return nil, errors.Wrapf(err, "cursor store %v has malformed sequence in %q", path, line)
		}
		cs.seqs[strings.TrimSpace(line[:i])] = seq
	}
	return cs, errors.Wrapf(s.Err(), "unable to read cursor store %v", path)
}

// Get returns the last committed sequence for a source file, -1 if the
// source has never been imported.
func (c *CursorStore) Get(source string) int {
	if seq, ok := c.seqs[source]; ok {
		return seq
	}
	return -1
}

// Advance durably records a new watermark. All unrelated keys are preserved;
// the rewrite goes through a temp file and rename so a crash can never leave
// a truncated store behind.
func (c *CursorStore) Advance(source string, seq int) error {
	c.seqs[source] = seq

	keys := make([]string, 0, len(c.seqs))
	for k := range c.seqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".cursors-*")
	if err != nil {
		return errors.Wrap(err, "unable to create cursor temp file")
	}
	defer os.Remove(tmp.Name())

	for _, k := range keys {
		if _, err := fmt.Fprintf(tmp, "%s:%d\n", k, c.seqs[k]); err != nil {
			tmp.Close()
			return errors.Wrap(err, "unable to write cursor store")
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "unable to flush cursor store")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "unable to close cursor temp file")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), c.path), "unable to replace cursor store %v", c.path)
}
