package main

import (
	"github.com/shopspring/decimal"
)

// Decision is the classifier's tentative verdict for one transaction.
type Decision struct {
	Account     Account
	Disposition Disposition
	Rule        string // name of the matched rule, empty for fallbacks
}

// Classifier evaluates the ordered rule table. It is a pure function of the
// transaction and the table: no prompting, no state, no side effects, so it
// can run headless over a whole batch before any human gets involved.
type Classifier struct {
	rules           []compiledRule
	smallBelow      decimal.Decimal
	smallAccount    Account
	fallbackExpense Account
	fallbackIncome  Account
}

func NewClassifier(table RuleTable, smallBelow decimal.Decimal) (*Classifier, error) {
	rules, err := compileRules(table)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		rules:           rules,
		smallBelow:      smallBelow,
		smallAccount:    mustAccount("Expenses:Small"),
		fallbackExpense: mustAccount("Expenses:Miscellaneous"),
		fallbackIncome:  mustAccount("Income:Other"),
	}, nil
}

// Classify walks the decision list top to bottom and returns the first
// match. A miss is not an error: the transaction falls through to the
// catch-all account for its sign with disposition UNKNOWN.
func (c *Classifier) Classify(t Txn) Decision {
	desc := t.Description()
	for _, r := range c.rules {
		if r.matches(desc, t.Amount) {
			return Decision{Account: r.account, Disposition: r.disposition, Rule: r.name}
		}
	}
	if t.Amount.IsNegative() {
		if c.smallBelow.Sign() > 0 && t.Amount.Abs().Cmp(c.smallBelow) < 0 {
			return Decision{Account: c.smallAccount, Disposition: DispositionAuto, Rule: "small amounts"}
		}
		return Decision{Account: c.fallbackExpense, Disposition: DispositionUnknown}
	}
	return Decision{Account: c.fallbackIncome, Disposition: DispositionUnknown}
}
