package main

import (
	"github.com/pkg/errors"
)

// Group buckets accounts by their role in the journal. It only drives
// display and training, never classification.
type Group int

const (
	GroupAsset Group = iota
	GroupExpense
	GroupIncome
	GroupTransfer
)

func (g Group) String() string {
	switch g {
	case GroupAsset:
		return "asset"
	case GroupExpense:
		return "expense"
	case GroupIncome:
		return "income"
	case GroupTransfer:
		return "transfer"
	}
	return "unknown"
}

// Account identifies one node of the closed taxonomy. The Label is what ends
// up in the journal text and must never change shape once written, since the
// journal is plain text and not migrated.
type Account struct {
	ID    string
	Label string
	Group Group
}

var ErrUnknownAccount = errors.New("unknown account")

// accountTable is the canonical taxonomy, the union of the categories that
// accumulated across the historical import scripts.
var accountTable = []Account{
	{"BANK_PAYMENT_ACCOUNT", "Assets:Bank:Payment account", GroupAsset},
	{"BANK_CREDITCARD", "Assets:Bank:Creditcard", GroupAsset},
	{"BANK_SAVINGS", "Assets:Bank:Savings", GroupTransfer},
	{"INVESTMENT_FUND", "Assets:Investment fund", GroupTransfer},

	{"FOOD_AND_GROCERIES", "Expenses:Food and groceries", GroupExpense},
	{"ALCOHOL", "Expenses:Alcohol", GroupExpense},
	{"PHONE_SUBSCRIPTION", "Expenses:Phone:Subscription", GroupExpense},
	{"DONATIONS", "Expenses:Donations", GroupExpense},
	{"PUBLIC_TRANSPORT", "Expenses:Public transport", GroupExpense},
	{"DOMAIN_NAME", "Expenses:Domain name", GroupExpense},
	{"RENT", "Expenses:Room:Rent", GroupExpense},
	{"HEALTH_INSURANCE", "Expenses:Insurance:Health", GroupExpense},
	{"LIABILITY_INSURANCE", "Expenses:Insurance:Liability", GroupExpense},
	{"OTHER_INSURANCE", "Expenses:Insurance:Other", GroupExpense},
	{"SPORT", "Expenses:Sport", GroupExpense},
	{"HAIRDRESSER", "Expenses:Hairdresser", GroupExpense},
	{"TUITION_FEES", "Expenses:Tuition fees", GroupExpense},
	{"TAX", "Expenses:Tax", GroupExpense},
	{"CANTEEN_UVA", "Expenses:UvA:Canteen", GroupExpense},
	{"VIA_UVA", "Expenses:UvA:VIA", GroupExpense},
	{"SMALL", "Expenses:Small", GroupExpense},
	{"MISC", "Expenses:Miscellaneous", GroupExpense},

	{"SALARY_SSL", "Income:Salary:SSL Leiden", GroupIncome},
	{"SALARY_HZFP", "Income:Salary:Het Zwarte Fietsenplan", GroupIncome},
	{"RENT_ALLOWANCE", "Income:Allowance:Rent", GroupIncome},
	{"HEALTH_ALLOWANCE", "Income:Allowance:Health", GroupIncome},
	{"PAYMENT_REQUESTS", "Income:Payment requests", GroupIncome},
	{"GIFTS", "Income:Gifts", GroupIncome},
	{"REPAYMENTS", "Income:Repayments", GroupIncome},
	{"BOARD_GRANT", "Income:Board grant", GroupIncome},
	{"STUDENT_GRANTS_LOANS", "Income:DUO student grants and loans", GroupIncome},
	{"INVESTMENT_FUND_RETURN", "Income:Investment fund return", GroupIncome},
	{"INCOME_OTHER", "Income:Other", GroupIncome},
}

var accountsByLabel = func() map[string]Account {
	m := make(map[string]Account, len(accountTable))
	for _, a := range accountTable {
		m[a.Label] = a
	}
	return m
}()

// LookupAccount resolves an exact label against the taxonomy.
func LookupAccount(label string) (Account, error) {
	a, ok := accountsByLabel[label]
	if !ok {
		return Account{}, errors.Wrapf(ErrUnknownAccount, "%q", label)
	}
	return a, nil
}

// AccountLabels returns all valid labels in table order.
func AccountLabels() []string {
	labels := make([]string, 0, len(accountTable))
	for _, a := range accountTable {
		labels = append(labels, a.Label)
	}
	return labels
}

func mustAccount(label string) Account {
	a, err := LookupAccount(label)
	assertf(err == nil, "Account %q is not part of the taxonomy", label)
	return a
}
