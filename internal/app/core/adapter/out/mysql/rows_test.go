package mysql

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

func TestRowsPreserveOrderAndOptionalFields(t *testing.T) {
	rate := decimal.RequireFromString("110.25")
	deletedAt := time.Date(2024, time.May, 3, 4, 5, 6, 0, time.UTC)
	s := domain.DefaultSnapshot()
	s.Transactions = []domain.Transaction{
		{
			ID: "newest", Type: domain.TransactionTypeTransfer, Amount: decimal.RequireFromString("10.5"), Currency: "USD",
			CategoryID: domain.TransferCategoryID, SourceFundID: "f-1", TargetFundID: "f-2", TargetCurrency: "BDT",
			ExchangeRate: &rate, Date: domain.NewDate(2024, time.May, 2), IsDeleted: true, DeletedAt: &deletedAt,
		},
		{ID: "oldest", Type: domain.TransactionTypeIncome, Amount: decimal.NewFromInt(7), Currency: "BDT", SourceFundID: "f-1"},
	}
	s.Balances = []domain.Balance{
		{FundID: "f-2", Currency: "BDT", Amount: decimal.Zero},
		{FundID: "f-1", Currency: "USD", Amount: decimal.RequireFromString("-3.75")},
	}

	rows, err := toRows(domain.NewUserKey("a@b.c"), s)
	require.NoError(t, err)
	assert.Equal(t, "user:a@b.c", rows.settings.UserKey)
	assert.Equal(t, "BDT,USD,MVR,EUR", rows.settings.AvailableCurrencies)
	assert.Equal(t, 1, rows.transactions[1].Position)
	assert.True(t, rows.transactions[0].ExchangeRate.Valid)
	assert.False(t, rows.transactions[1].ExchangeRate.Valid)

	got, err := fromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "oldest"}, []string{got.Transactions[0].ID, got.Transactions[1].ID})
	require.NotNil(t, got.Transactions[0].ExchangeRate)
	assert.True(t, got.Transactions[0].ExchangeRate.Equal(rate))
	assert.Nil(t, got.Transactions[1].ExchangeRate)
	assert.Equal(t, deletedAt, *got.Transactions[0].DeletedAt)
	assert.Equal(t, domain.NewDate(2024, time.May, 2), got.Transactions[0].Date)
	assert.True(t, got.Transactions[1].Date.IsZero())
	assert.Equal(t, s.Funds, got.Funds)
	assert.Equal(t, s.Categories, got.Categories)
	assert.Equal(t, s.AvailableCurrencies, got.AvailableCurrencies)
	assert.Equal(t, "f-2", got.Balances[0].FundID, "zero cells are kept in order")
	assert.True(t, got.ExchangeRates["MVR"].Equal(decimal.RequireFromString("7.14")))
}

func TestFromRowsRejectsBadDate(t *testing.T) {
	_, err := fromRows(snapshotRows{transactions: []sqlTransaction{{ID: "x", Date: "31/12/2024"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestSplitCurrenciesEmpty(t *testing.T) {
	assert.Empty(t, splitCurrencies(""))
	assert.Equal(t, []domain.Currency{"USD"}, splitCurrencies("USD"))
}

func TestAmountColumnsKeepFullPrecision(t *testing.T) {
	columns := map[any][]string{
		&sqlTransaction{}: {"Amount", "ExchangeRate"},
		&sqlBalance{}:     {"Amount"},
	}
	for model, names := range columns {
		sch, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		for _, name := range names {
			field := sch.LookUpField(name)
			require.NotNil(t, field, name)
			assert.Equal(t, schema.DataType("varchar(96)"), field.DataType, "%s.%s", sch.Table, name)
		}
	}

	// 12 位以上的小數 (amount*rate) 原樣寫入、讀回
	amount := decimal.RequireFromString("100.123456789").Mul(decimal.RequireFromString("0.0090702947"))
	v, err := sqlBalance{Amount: amount}.Amount.Value()
	require.NoError(t, err)
	assert.Equal(t, amount.String(), v)

	var back decimal.Decimal
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.True(t, back.Equal(amount))
}
