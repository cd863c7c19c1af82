package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pickAnswer struct {
	label string
	ok    bool
}

// scriptAsker plays back canned answers so the resolution flow can be
// driven headless.
type scriptAsker struct {
	confirms []bool
	picks    []pickAnswer

	confirmCalls int
	pickCalls    int
	suggestions  []string
}

func (a *scriptAsker) Confirm(t Txn, account Account) bool {
	ans := a.confirms[0]
	a.confirms = a.confirms[1:]
	a.confirmCalls++
	return ans
}

func (a *scriptAsker) PickAccount(t Txn, fallback Account, suggestions []string) (string, bool) {
	ans := a.picks[0]
	a.picks = a.picks[1:]
	a.pickCalls++
	a.suggestions = suggestions
	return ans.label, ans.ok
}

func paymentAccount(t *testing.T) Account {
	t.Helper()
	return mustAccount("Assets:Bank:Payment account")
}

func TestResolveAuto(t *testing.T) {
	asker := &scriptAsker{}
	r := NewResolver(paymentAccount(t), asker, nil)

	tx := txn("Albert Heijn 1234", "-9.50")
	entry := r.Resolve(tx, Decision{Account: mustAccount("Expenses:Food and groceries"), Disposition: DispositionAuto})

	require.NoError(t, entry.Validate())
	require.Len(t, entry.Postings, 2)
	assert.Equal(t, "Assets:Bank:Payment account", entry.Postings[0].Account.Label)
	assert.Equal(t, "-9.50", entry.Postings[0].Amount.StringFixed(2))
	assert.Equal(t, "Expenses:Food and groceries", entry.Postings[1].Account.Label)
	assert.Equal(t, "9.50", entry.Postings[1].Amount.StringFixed(2))
	assert.Equal(t, "2023-4 - Albert Heijn 1234", entry.Description)
	assert.Empty(t, entry.Tags)

	assert.Zero(t, asker.confirmCalls)
	assert.Zero(t, asker.pickCalls)
	stats := r.Stats()
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Auto)
	assert.Zero(t, stats.Unknown)
}

func TestResolveConfirmAccepted(t *testing.T) {
	asker := &scriptAsker{confirms: []bool{true}}
	r := NewResolver(paymentAccount(t), asker, nil)

	entry := r.Resolve(txn("Interpolis Verzekering", "-21.80"),
		Decision{Account: mustAccount("Expenses:Insurance:Other"), Disposition: DispositionConfirm})

	assert.Equal(t, "Expenses:Insurance:Other", entry.Postings[1].Account.Label)
	assert.Empty(t, entry.Tags)
	assert.Equal(t, 1, r.Stats().Confirmed)
	assert.Zero(t, r.Stats().Unknown)
	assert.Zero(t, asker.pickCalls)
}

func TestResolveConfirmRejectedEscalates(t *testing.T) {
	asker := &scriptAsker{
		confirms: []bool{false},
		picks:    []pickAnswer{{"Expenses:Insurance:Liability", true}},
	}
	r := NewResolver(paymentAccount(t), asker, nil)

	entry := r.Resolve(txn("AEGON premie", "-21.80"),
		Decision{Account: mustAccount("Expenses:Insurance:Other"), Disposition: DispositionConfirm})

	assert.Equal(t, "Expenses:Insurance:Liability", entry.Postings[1].Account.Label)
	assert.Empty(t, entry.Tags)
	assert.Equal(t, 1, r.Stats().Unknown)
}

// A label outside the taxonomy is rejected and the choice re-offered, not
// accepted and not aborted.
func TestResolveInvalidLabelReprompts(t *testing.T) {
	asker := &scriptAsker{picks: []pickAnswer{
		{"Expenses:Bogus", true},
		{"Expenses:Sport", true},
	}}
	r := NewResolver(paymentAccount(t), asker, nil)

	entry := r.Resolve(txn("Sportschool", "-30.00"),
		Decision{Account: mustAccount("Expenses:Miscellaneous"), Disposition: DispositionUnknown})

	assert.Equal(t, 2, asker.pickCalls)
	assert.Equal(t, "Expenses:Sport", entry.Postings[1].Account.Label)
	assert.Empty(t, entry.Tags)
}

func TestResolveDeclineKeepsFallbackAndTags(t *testing.T) {
	asker := &scriptAsker{picks: []pickAnswer{{"", false}}}
	r := NewResolver(paymentAccount(t), asker, nil)

	entry := r.Resolve(txn("Totally Obscure Webshop", "-12.00"),
		Decision{Account: mustAccount("Expenses:Miscellaneous"), Disposition: DispositionUnknown})

	assert.Equal(t, "Expenses:Miscellaneous", entry.Postings[1].Account.Label)
	assert.Equal(t, []string{unknownTag}, entry.Tags)
	assert.Equal(t, 1, r.Stats().Unknown)
	require.NoError(t, entry.Validate())
}

func TestResolveUnknownCounterAccumulates(t *testing.T) {
	asker := &scriptAsker{picks: []pickAnswer{{"", false}, {"", false}}}
	r := NewResolver(paymentAccount(t), asker, nil)

	d := Decision{Account: mustAccount("Income:Other"), Disposition: DispositionUnknown}
	r.Resolve(txn("Mystery one", "10.00"), d)
	r.Resolve(txn("Mystery two", "20.00"), d)

	assert.Equal(t, 2, r.Stats().Unknown)
	assert.Equal(t, 2, r.Stats().Processed)
}

func TestResolveSuggestionsReachAsker(t *testing.T) {
	asker := &scriptAsker{picks: []pickAnswer{{"Expenses:Sport", true}}}
	suggest := func(Txn) []string { return []string{"Expenses:Sport", "Expenses:Hairdresser"} }
	r := NewResolver(paymentAccount(t), asker, suggest)

	r.Resolve(txn("Sportschool", "-30.00"),
		Decision{Account: mustAccount("Expenses:Miscellaneous"), Disposition: DispositionUnknown})

	assert.Equal(t, []string{"Expenses:Sport", "Expenses:Hairdresser"}, asker.suggestions)
}
