package main

import (
	"fmt"
)

// Asker is the interactive boundary the resolution flow escalates through.
// Implementations block until the human answers; tests script them.
type Asker interface {
	// Confirm shows the tentative account and asks for a plain yes/no.
	Confirm(t Txn, account Account) bool
	// PickAccount offers the account choice for an escalated transaction.
	// ok=false means the user declined to pick one. Returned labels are not
	// trusted: the resolver validates against the taxonomy and asks again.
	PickAccount(t Txn, fallback Account, suggestions []string) (label string, ok bool)
}

// SuggestFunc ranks candidate account labels for an escalated transaction.
type SuggestFunc func(t Txn) []string

// RunStats accumulates per-run counters. The unknown counter lives here
// rather than in a package variable so runs stay independent.
type RunStats struct {
	Processed int
	Auto      int
	Confirmed int
	Unknown   int
}

// Resolver turns a tentative classifier decision into a finalized journal
// entry, consulting the Asker for CONFIRM and UNKNOWN dispositions. One
// human decision per transaction, never an automatic retry.
type Resolver struct {
	source  Account // the bank account every entry is posted against
	asker   Asker
	suggest SuggestFunc
	stats   RunStats
}

func NewResolver(source Account, asker Asker, suggest SuggestFunc) *Resolver {
	if suggest == nil {
		suggest = func(Txn) []string { return nil }
	}
	return &Resolver{source: source, asker: asker, suggest: suggest}
}

func (r *Resolver) Stats() RunStats { return r.stats }

// Resolve runs the per-transaction state machine:
// CLASSIFIED -> {ACCEPTED | ESCALATED} -> FINALIZED.
func (r *Resolver) Resolve(t Txn, d Decision) JournalEntry {
	account := d.Account
	var tags []string

	switch d.Disposition {
	case DispositionAuto:
		r.stats.Auto++
	case DispositionConfirm:
		if r.asker.Confirm(t, d.Account) {
			r.stats.Confirmed++
		} else {
			// Rejection and cancellation both land in the same place as an
			// unmatched transaction.
			account, tags = r.escalate(t, d.Account)
		}
	case DispositionUnknown:
		account, tags = r.escalate(t, d.Account)
	}

	r.stats.Processed++
	// Signs are forced opposite here, so the zero-sum invariant holds by
	// construction; Validate still runs before rendering to catch defects.
	return JournalEntry{
		Date:        t.Date,
		Description: fmt.Sprintf("%s - %s", t.ID(), t.Description()),
		Postings: []Posting{
			{Account: r.source, Amount: t.Amount},
			{Account: account, Amount: t.Amount.Neg()},
		},
		Tags: tags,
	}
}

// escalate hands the decision to the human. An invalid label is rejected and
// the choice re-offered; a decline keeps the fallback account and tags the
// entry for later manual review.
func (r *Resolver) escalate(t Txn, fallback Account) (Account, []string) {
	r.stats.Unknown++
	suggestions := r.suggest(t)
	for {
		label, ok := r.asker.PickAccount(t, fallback, suggestions)
		if !ok {
			return fallback, []string{unknownTag}
		}
		account, err := LookupAccount(label)
		if err != nil {
			continue
		}
		return account, nil
	}
}
