package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
)

var today = domain.NewDate(2024, 8, 15)

func TestTxDraftExpense(t *testing.T) {
	p := &txCmd{typ: "expense", amount: "500", currency: "bdt", category: "cat-exp-1", fund: domain.DefaultFundID}
	d, err := p.draft(today)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeExpense, d.Type)
	assert.Equal(t, domain.Currency("BDT"), d.Currency)
	assert.Equal(t, today, d.Date)
	assert.Nil(t, d.ExchangeRate)
	assert.NoError(t, d.Validate())
}

func TestTxDraftTransfer(t *testing.T) {
	p := &txCmd{
		typ: "TRANSFER", amount: "100", currency: "USD", fund: domain.DefaultFundID,
		to: "f-bank", toCurrency: "bdt", rate: "110", date: "2024-08-01",
	}
	d, err := p.draft(today)
	require.NoError(t, err)

	assert.Equal(t, domain.TransferCategoryID, d.CategoryID)
	assert.Equal(t, domain.Currency("BDT"), d.TargetCurrency)
	assert.Equal(t, "110", d.ExchangeRate.String())
	assert.Equal(t, "2024-08-01", d.Date.String())
	assert.NoError(t, d.Validate())
}

func TestTxDraftRejectsBadInput(t *testing.T) {
	_, err := (&txCmd{typ: "GIFT", amount: "1"}).draft(today)
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)

	_, err = (&txCmd{typ: "INCOME", amount: "lots"}).draft(today)
	assert.ErrorContains(t, err, "invalid amount")
}

func TestQuoteRequest(t *testing.T) {
	p := &quoteCmd{provider: "MANUAL", amount: "100", rate: "100", fee: "0", bonus: "2.5", refMVR: "0", refBDT: "0", adjust: "0"}
	req, err := p.request()
	require.NoError(t, err)
	assert.Equal(t, usecase.ProviderManual, req.Provider)
	assert.Equal(t, "2.5", req.BonusPct.String())

	p.fee = "x"
	_, err = p.request()
	assert.ErrorContains(t, err, "invalid fee")

	p = &quoteCmd{provider: "BANK", amount: "2000", rate: "120", fee: "5", bonus: "0",
		entry: " mvr", refMVR: "20.2", refBDT: "0", adjust: "-150"}
	req, err = p.request()
	require.NoError(t, err)
	assert.Equal(t, domain.Currency("MVR"), req.EntryCurrency)
	assert.Equal(t, "20.2", req.References.USDMVR.String())
	assert.True(t, req.References.USDBDT.IsZero())
	assert.Equal(t, "-150", req.Adjustment.String())

	p.refMVR = ""
	_, err = p.request()
	assert.ErrorContains(t, err, "invalid ref-mvr")
}

func TestParseCurrencies(t *testing.T) {
	assert.Equal(t, []domain.Currency{"BDT", "USD"}, parseCurrencies(" bdt, usd ,,"))
	assert.Empty(t, parseCurrencies(""))
}
