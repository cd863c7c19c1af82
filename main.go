package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	yaml "gopkg.in/yaml.v2"
)

var (
	csvFile   = flag.String("csv", "", "File path of the bank CSV export to import.")
	output    = flag.String("out", "", "Journal file to append entries to.")
	configDir = flag.String("conf", os.Getenv("HOME")+"/.ing2ledger",
		"Config directory holding config.yaml, rules.yaml, shortcuts.yaml and payees.yaml.")
	shortcuts  = flag.String("short", "shortcuts.yaml", "Name of shortcuts file.")
	sourceAcc  = flag.String("source", "Assets:Bank:Payment account", "Asset account the CSV was exported from.")
	smallBelow = flag.String("below", "0", "Classify unmatched outflows below this amount as Expenses:Small.")
	aiReview   = flag.Bool("ai", false, "Ask Claude to suggest accounts for escalated transactions.")
	meesman    = flag.Bool("meesman", false, "Treat -csv as a Meesman fund value export instead of a bank export.")
	cursors    = flag.String("cursors", "", "Cursor sidecar file. Defaults to <out>.cursors.")
)

type configs struct {
	Flags map[string]string `yaml:"flags"`
	AI    aiConfig          `yaml:"ai"`
}

// processPending runs the committed part of the pipeline: resolve, append to
// the journal, flush, then advance the cursor. The ordering is the crash
// guarantee — a watermark only moves for entries already on disk, so an
// interrupt loses at most the in-flight transaction.
func processPending(pending []Txn, decisions []Decision, r *Resolver,
	w *JournalWriter, cs *CursorStore, sourceID string, progress func(i int)) error {
	for i, t := range pending {
		if progress != nil {
			progress(i)
		}
		entry := r.Resolve(t, decisions[i])
		if err := w.WriteEntry(&entry); err != nil {
			return err
		}
		if err := cs.Advance(sourceID, t.Seq); err != nil {
			return err
		}
	}
	return nil
}

// mergeSuggestions joins two ranked lists, first list first, dropping
// duplicates. Neither input is modified.
func mergeSuggestions(primary, secondary []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, label := range primary {
		if !seen[label] {
			seen[label] = true
			merged = append(merged, label)
		}
	}
	for _, label := range secondary {
		if !seen[label] {
			seen[label] = true
			merged = append(merged, label)
		}
	}
	return merged
}

func main() {
	flag.Parse()

	if len(*csvFile) == 0 {
		oerr("Please specify the bank CSV export with -csv")
		return
	}
	if len(*output) == 0 {
		oerr("Please specify the output journal with -out")
		return
	}
	checkf(os.MkdirAll(*configDir, 0o755), "Unable to create directory: %v", *configDir)

	var cfg configs
	configPath := path.Join(*configDir, "config.yaml")
	if data, err := os.ReadFile(configPath); err == nil {
		checkf(yaml.Unmarshal(data, &cfg), "Unable to unmarshal yaml config at %v", configPath)
		for k, v := range cfg.Flags {
			flag.Set(k, v)
		}
	}
	if len(cfg.AI.APIKey) == 0 {
		cfg.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	cursorPath := *cursors
	if len(cursorPath) == 0 {
		cursorPath = *output + ".cursors"
	}
	if *meesman {
		runMeesmanImport(cursorPath)
		return
	}

	source, err := LookupAccount(*sourceAcc)
	checkf(err, "Invalid -source account: %v", *sourceAcc)
	below, err := decimal.NewFromString(*smallBelow)
	checkf(err, "Invalid -below amount: %v", *smallBelow)

	table, err := loadRuleTable(path.Join(*configDir, "rules.yaml"))
	checkf(err, "Unable to load rule table")
	classifier, err := NewClassifier(table, below)
	checkf(err, "Unable to compile rule table")

	in, err := os.Open(*csvFile)
	checkf(err, "Unable to open csv file: %v", *csvFile)
	txns, err := ReadTransactions(in)
	in.Close()
	checkf(err, "Unable to parse csv file: %v", *csvFile)

	subst, err := loadPayeeSubstitutions(path.Join(*configDir, "payees.yaml"))
	checkf(err, "Unable to load payee substitutions")
	if n := subst.apply(txns); n > 0 {
		fmt.Printf("Payee substitutions applied to %d transactions.\n", n)
	}

	cs, err := OpenCursorStore(cursorPath)
	checkf(err, "Unable to open cursor store: %v", cursorPath)

	sourceID := filepath.Base(*csvFile)
	last := cs.Get(sourceID)
	pending := pendingAfter(txns, last)
	if len(pending) == 0 {
		fmt.Printf("All %d transactions in %v are already journaled (cursor at %d).\n",
			len(txns), sourceID, last)
		return
	}
	fmt.Printf("%d of %d transactions in %v still to import (cursor at %d).\n",
		len(pending), len(txns), sourceID, last)

	// Learn suggestions from what the journal already holds, before this
	// run appends to it.
	journalData, _ := os.ReadFile(*output)
	sg := newSuggester(journalData)

	decisions := make([]Decision, len(pending))
	var escalated []Txn
	hints := make(map[int][]string)
	for i, t := range pending {
		decisions[i] = classifier.Classify(t)
		if decisions[i].Disposition != DispositionAuto {
			escalated = append(escalated, t)
			if h := sg.topHits(t.Description()); len(h) > 0 {
				hints[t.Seq] = h
			}
		}
	}

	var aiHints map[int][]string
	if (*aiReview || cfg.AI.Enabled) && len(escalated) > 0 {
		aiHints, err = reviewWithAI(context.Background(), cfg.AI, escalated, hints)
		if err != nil {
			// Suggestions are advisory; a failed review never blocks the run.
			fmt.Printf("AI review skipped: %v\n", err)
		}
	}
	suggest := func(t Txn) []string {
		return mergeSuggestions(aiHints[t.Seq], hints[t.Seq])
	}

	w, created, err := OpenJournal(*output, time.Now())
	checkf(err, "Unable to open journal: %v", *output)
	defer w.Close()
	if created {
		fmt.Printf("Journal created: %v\n", *output)
	}

	asker := newTerminalAsker(path.Join(*configDir, *shortcuts))
	defer asker.Close()
	defer saneMode()
	singleCharMode()

	resolver := NewResolver(source, asker, suggest)
	err = processPending(pending, decisions, resolver, w, cs, sourceID, func(i int) {
		asker.Progress(i+1, len(pending))
	})
	checkf(err, "Import failed; cursor for %v stays at the last committed entry", sourceID)

	saneMode()
	stats := resolver.Stats()
	fmt.Println()
	color.New(color.BgGreen, color.FgBlack).Printf(" %d entries written to %s ", stats.Processed, *output)
	fmt.Println()
	fmt.Printf("\tauto: %d  confirmed: %d  unknown: %d\n",
		stats.Auto, stats.Confirmed, stats.Unknown)
}
