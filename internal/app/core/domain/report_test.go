package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportSnapshot() Snapshot {
	s := DefaultSnapshot()
	day := NewDate(2024, time.July, 10)
	s.Balances = []Balance{
		{FundID: "f-1", Currency: "BDT", Amount: dec("1100")},
		{FundID: "f-1", Currency: "USD", Amount: dec("10")},
		{FundID: "f-2", Currency: "BDT", Amount: dec("-100")},
		{FundID: "f-2", Currency: "MVR", Amount: dec("0")},
	}
	s.Transactions = []Transaction{
		{ID: "1", Type: TransactionTypeExpense, Amount: dec("40"), Currency: "BDT", CategoryID: "cat-exp-1", Date: day},
		{ID: "2", Type: TransactionTypeExpense, Amount: dec("60"), Currency: "BDT", CategoryID: "cat-exp-2", Date: day.AddDays(-1)},
		{ID: "3", Type: TransactionTypeExpense, Amount: dec("30"), Currency: "BDT", CategoryID: "gone", Date: day},
		{ID: "4", Type: TransactionTypeExpense, Amount: dec("500"), Currency: "BDT", CategoryID: "cat-exp-1", Date: day, IsDeleted: true},
		{ID: "5", Type: TransactionTypeIncome, Amount: dec("1200"), Currency: "BDT", CategoryID: "cat-inc-1", Date: day.AddDays(-10)},
		{ID: "6", Type: TransactionTypeTransfer, Amount: dec("5"), Currency: "USD", CategoryID: TransferCategoryID, Date: day},
	}
	return s
}

func TestSnapshotBalances(t *testing.T) {
	s := reportSnapshot()
	assert.True(t, s.FundBalance("f-1", "USD").Equal(dec("10")))
	assert.True(t, s.FundBalance("f-9", "USD").IsZero())
	assert.True(t, s.SumByCurrency("BDT").Equal(dec("1000")))
	// 1000 BDT + 10 USD * 110
	assert.True(t, s.TotalBalanceIn("BDT").Equal(dec("2100")))
	assert.True(t, s.TotalBalanceIn("USD").Equal(dec("2100").Div(dec("110"))))
	assert.Len(t, s.FundHoldings("f-2"), 1)
}

func TestSnapshotCurrencySummary(t *testing.T) {
	got := reportSnapshot().CurrencySummary()
	require.Len(t, got, 2, "MVR and EUR have no activity")
	assert.Equal(t, Currency("BDT"), got[0].Currency)
	assert.True(t, got[0].Income.Equal(dec("1200")))
	assert.True(t, got[0].Expense.Equal(dec("130")))
	assert.True(t, got[0].Available.Equal(dec("1000")))
	assert.Equal(t, Currency("USD"), got[1].Currency)
	assert.True(t, got[1].Expense.IsZero(), "transfers are not expenses")
}

func TestSnapshotCategoryBreakdown(t *testing.T) {
	got := reportSnapshot().CategoryBreakdown("BDT", TransactionTypeExpense)
	require.Len(t, got, 3)
	assert.Equal(t, "Daily usage things", got[0].Name)
	assert.Equal(t, "Food", got[1].Name)
	assert.True(t, got[1].Amount.Equal(dec("40")), "trashed transactions are excluded")
	assert.Equal(t, UnknownCategoryName, got[2].Name)
}

func TestSnapshotDailyFlow(t *testing.T) {
	end := NewDate(2024, time.July, 10)
	got := reportSnapshot().DailyFlow("BDT", end, 7)
	require.Len(t, got, 7)
	assert.Equal(t, end.AddDays(-6), got[0].Date)
	assert.Equal(t, end, got[6].Date)
	assert.True(t, got[6].Expense.Equal(dec("70")))
	assert.True(t, got[5].Expense.Equal(dec("60")))
	assert.True(t, got[0].Income.IsZero())
	assert.Empty(t, reportSnapshot().DailyFlow("BDT", end, 0))
}

func TestSnapshotTrash(t *testing.T) {
	trash := reportSnapshot().Trash()
	require.Len(t, trash, 1)
	assert.Equal(t, "4", trash[0].ID)
}
