package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ingHeader = `"Datum","Naam / Omschrijving","Rekening","Tegenrekening","Code","Af Bij","Bedrag (EUR)","MutatieSoort","Mededelingen"`

func TestReadTransactionsING(t *testing.T) {
	in := ingHeader + "\n" +
		`"20230107","HET ZWARTE FIETSENPLAN","NL11","NL22","GT","Bij","1.234,56","Overschrijving","Salaris januari"` + "\n" +
		`"20230105","Albert Heijn 1234","NL11","","BA","Af","9,50","Betaalautomaat",""` + "\n"

	txns, err := ReadTransactions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	// Sorted by date, sequence numbers assigned by position.
	assert.Equal(t, 0, txns[0].Seq)
	assert.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.Equal(t, "Albert Heijn 1234", txns[0].Name)
	assert.Equal(t, "-9.50", txns[0].Amount.StringFixed(2))

	assert.Equal(t, 1, txns[1].Seq)
	assert.Equal(t, "1234.56", txns[1].Amount.StringFixed(2))
	assert.Equal(t, "HET ZWARTE FIETSENPLAN - Salaris januari", txns[1].Description())
}

func TestReadTransactionsDashedDates(t *testing.T) {
	in := ingHeader + "\n" +
		`"05-01-2023","Albert Heijn 1234","NL11","","BA","Af","9,50","Betaalautomaat",""` + "\n"

	txns, err := ReadTransactions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

func TestReadTransactionsMalformedAmount(t *testing.T) {
	in := ingHeader + "\n" +
		`"20230105","Albert Heijn 1234","NL11","","BA","Af","nine fifty","Betaalautomaat",""` + "\n"

	_, err := ReadTransactions(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
}

func TestReadTransactionsMalformedDate(t *testing.T) {
	in := ingHeader + "\n" +
		`"yesterday","Albert Heijn 1234","NL11","","BA","Af","9,50","Betaalautomaat",""` + "\n"

	_, err := ReadTransactions(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
}

func TestReadTransactionsUnknownDirection(t *testing.T) {
	in := ingHeader + "\n" +
		`"20230105","Albert Heijn 1234","NL11","","BA","Sideways","9,50","Betaalautomaat",""` + "\n"

	_, err := ReadTransactions(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
}

func TestReadTransactionsMissingColumn(t *testing.T) {
	in := `"Datum","Naam / Omschrijving"` + "\n" + `"20230105","Albert Heijn"` + "\n"
	_, err := ReadTransactions(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "Albert Heijn 1234", Txn{Name: "Albert Heijn 1234"}.Description())
	assert.Equal(t, "De Key - Huur januari", Txn{Name: "De Key", Comment: "Huur januari"}.Description())
}

func TestTxnID(t *testing.T) {
	tx := Txn{Seq: 4, Date: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2023-4", tx.ID())
}
