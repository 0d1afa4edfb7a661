package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
)

func TestSummaryDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.core.CreateTransaction(ctx, expense("250"))
	require.NoError(t, err)
	tx, _, err := f.core.CreateTransaction(ctx, expense("50"))
	require.NoError(t, err)
	_, err = f.core.TrashTransaction(ctx, tx.ID)
	require.NoError(t, err)

	sum, err := f.core.Summary(ctx, usecase.SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, domain.Currency("BDT"), sum.Currency)
	assert.Equal(t, domain.BaseCurrency, sum.TotalIn)
	assert.True(t, sum.TotalBalance.Equal(dec("-250")))
	require.Len(t, sum.Categories, 1)
	assert.Equal(t, "Food", sum.Categories[0].Name)
	require.Len(t, sum.DailyFlow, usecase.DefaultFlowDays)
	assert.True(t, sum.DailyFlow[usecase.DefaultFlowDays-1].Expense.Equal(dec("250")))
	assert.Equal(t, 1, sum.TrashCount)

	_, err = f.core.Summary(ctx, usecase.SummaryQuery{Type: domain.TransactionTypeTransfer})
	assert.ErrorIs(t, err, domain.ErrInvalidCategoryType)
}

func TestQuoteRemittance(t *testing.T) {
	f := newFixture(t)

	q, err := f.core.QuoteRemittance(usecase.RemittanceRequest{
		Provider: usecase.ProviderWesternUnion, Country: "India", Amount: dec("255"), Rate: dec("83"),
	})
	require.NoError(t, err)
	assert.True(t, q.Fee.Equal(dec("5")), "fee %s", q.Fee)
	assert.Equal(t, domain.Currency("INR"), q.PayoutCurrency)

	q, err = f.core.QuoteRemittance(usecase.RemittanceRequest{
		Provider: "manual", Amount: dec("100"), Rate: dec("110"), Fee: dec("10"), BonusPct: dec("2.5"),
	})
	require.NoError(t, err)
	assert.True(t, q.Total.Equal(dec("10147.5")))

	// 未填參考匯率時用預設值 (20.20 MVR、125.46 BDT)
	q, err = f.core.QuoteRemittance(usecase.RemittanceRequest{
		Provider: "wu_gross", Amount: dec("2020"), EntryCurrency: "MVR", BonusPct: dec("2"),
	})
	require.NoError(t, err)
	assert.True(t, q.Gross.Equal(dec("100")), "gross %s", q.Gross)
	assert.True(t, q.Fee.Equal(dec("4")))
	assert.True(t, q.Base.Equal(dec("12044.16")), "base %s", q.Base)
	assert.True(t, q.Total.Equal(dec("12284.0432")), "total %s", q.Total)
	assert.True(t, q.TotalPaidMVR.Equal(dec("2020")))

	q, err = f.core.QuoteRemittance(usecase.RemittanceRequest{
		Provider: usecase.ProviderBank, Amount: dec("100"), Rate: dec("120"), Fee: dec("5"), Adjustment: dec("-200"),
		References: domain.ReferenceRates{USDMVR: dec("20")},
	})
	require.NoError(t, err)
	assert.True(t, q.Total.Equal(dec("11200")))
	assert.True(t, q.TotalPaidMVR.Equal(dec("2000")))

	_, err = f.core.QuoteRemittance(usecase.RemittanceRequest{Provider: usecase.ProviderWesternUnionGross, Country: "Atlantis"})
	assert.ErrorIs(t, err, domain.ErrUnknownCountry)

	_, err = f.core.QuoteRemittance(usecase.RemittanceRequest{Provider: "PIGEON"})
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}
