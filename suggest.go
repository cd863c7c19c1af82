package main

import (
	"bufio"
	"bytes"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jbrukh/bayesian"
)

// suggester ranks accounts for escalated transactions using a TF-IDF
// bayesian classifier trained on the existing journal. Purely advisory: its
// hits seed the interactive picker, they never classify on their own.
type suggester struct {
	classes []bayesian.Class
	cl      *bayesian.Classifier
}

var txnIDPrefix = regexp.MustCompile(`^\d{4}-\d+ - `)

func prepareDescription(desc string) []string {
	desc = strings.ToLower(desc)
	desc = strings.ReplaceAll(desc, "*", " ")
	return strings.Fields(desc)
}

// newSuggester learns description -> counterparty account pairs from a
// rendered journal. Returns nil when there is not enough history to train
// on; callers treat a nil suggester as "no suggestions".
func newSuggester(journal []byte) *suggester {
	type sample struct {
		desc    string
		account string
	}
	var samples []sample
	tomap := make(map[string]bool)

	var desc string
	s := bufio.NewScanner(bytes.NewReader(journal))
	for s.Scan() {
		line := s.Text()
		if len(line) == 0 || strings.HasPrefix(line, ";") {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			// Header line: date, then description, tags after ';'.
			parts := strings.SplitN(line, " ", 2)
			desc = ""
			if len(parts) < 2 {
				continue
			}
			if _, err := time.Parse(stamp, parts[0]); err != nil {
				continue
			}
			desc = parts[1]
			if i := strings.Index(desc, ";"); i >= 0 {
				desc = desc[:i]
			}
			desc = txnIDPrefix.ReplaceAllString(strings.TrimSpace(desc), "")
			continue
		}
		if len(desc) == 0 {
			continue
		}
		label, _, ok := parsePosting(line)
		if !ok {
			continue
		}
		// Only counterparty accounts are worth learning; the asset side is
		// the same for every entry.
		a, err := LookupAccount(label)
		if err != nil || a.Group == GroupAsset {
			continue
		}
		samples = append(samples, sample{desc: desc, account: label})
		tomap[label] = true
	}

	if len(tomap) < 2 {
		return nil
	}

	sg := &suggester{}
	for label := range tomap {
		sg.classes = append(sg.classes, bayesian.Class(label))
	}
	sort.Slice(sg.classes, func(i, j int) bool { return sg.classes[i] < sg.classes[j] })
	sg.cl = bayesian.NewClassifierTfIdf(sg.classes...)
	for _, smp := range samples {
		sg.cl.Learn(prepareDescription(smp.desc), bayesian.Class(smp.account))
	}
	sg.cl.ConvertTermsFreqToTfIdf()
	return sg
}

// topHits returns up to 5 account labels ranked by score. The cut-off is a
// standard deviation below the leader, so a clear winner comes back alone.
func (sg *suggester) topHits(desc string) []string {
	if sg == nil {
		return nil
	}
	terms := prepareDescription(desc)
	if len(terms) == 0 {
		return nil
	}
	scores, _, _ := sg.cl.LogScores(terms)

	type pair struct {
		score float64
		pos   int
	}
	pairs := make([]pair, 0, len(scores))
	var mean, stddev float64
	for pos, score := range scores {
		pairs = append(pairs, pair{score, pos})
		mean += score
	}
	mean /= float64(len(scores))
	for _, score := range scores {
		diff := score - mean
		stddev += diff * diff
	}
	stddev /= float64(len(scores) - 1)
	stddev = math.Sqrt(stddev)

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })
	result := make([]string, 0, 5)
	last := pairs[0].score
	for i := 0; i < min(len(pairs), 5); i++ {
		pr := pairs[i]
		if math.Abs(pr.score-last) > stddev {
			break
		}
		result = append(result, string(sg.classes[pr.pos]))
		last = pr.score
	}
	return result
}
