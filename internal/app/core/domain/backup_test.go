package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupPartialImport(t *testing.T) {
	current := DefaultSnapshot()
	current.Language = "bn"

	b, err := DecodeBackup([]byte(`{"funds":[{"id":"f-9","name":"Bank","supportedCurrencies":["USD"]}]}`))
	require.NoError(t, err)

	next := b.ApplyTo(current)
	require.Len(t, next.Funds, 1)
	assert.Equal(t, "f-9", next.Funds[0].ID)
	assert.Equal(t, current.Categories, next.Categories)
	assert.Equal(t, current.AvailableCurrencies, next.AvailableCurrencies)
	assert.Equal(t, "bn", next.Language)
	assert.Equal(t, current.ExchangeRates, next.ExchangeRates)

	// 原快照不受影響
	assert.Equal(t, DefaultFundID, current.Funds[0].ID)
}

func TestBackupNullAndEmptyKeys(t *testing.T) {
	current := DefaultSnapshot()
	b, err := DecodeBackup([]byte(`{"funds":null,"categories":[],"language":""}`))
	require.NoError(t, err)

	next := b.ApplyTo(current)
	assert.Len(t, next.Funds, 1, "null keeps the current funds")
	assert.Empty(t, next.Categories, "an empty list replaces the categories")
	assert.Equal(t, DefaultLanguage, next.Language)
}

func TestDecodeBackupRejectsMalformed(t *testing.T) {
	for _, doc := range []string{``, `null`, `{"funds":`, `{"funds":{"id":"x"}}`, `[1,2]`, `{"transactions":[{"amount":"abc"}]}`} {
		_, err := DecodeBackup([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidBackup, "doc %q", doc)
	}
}

func TestDecodeBackupRejectsDuplicateIDs(t *testing.T) {
	docs := map[string]string{
		"transaction": `{"transactions":[{"id":"a","type":"INCOME","amount":1,"currency":"BDT"},{"id":"a","type":"EXPENSE","amount":2,"currency":"BDT"}]}`,
		"fund":        `{"funds":[{"id":"f-1","name":"Cash"},{"id":"f-1","name":"Cash again"}]}`,
		"category":    `{"categories":[{"id":"c","name":"A","type":"EXPENSE"},{"id":"c","name":"B","type":"EXPENSE"}]}`,
		"balance":     `{"balances":[{"fundId":"f-1","currency":"BDT","amount":1},{"fundId":"f-1","currency":"BDT","amount":2}]}`,
	}
	for what, doc := range docs {
		_, err := DecodeBackup([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidBackup, what)
		assert.ErrorContains(t, err, "duplicate "+what, what)
	}

	// 同一個 fund 的不同幣別不算重複
	_, err := DecodeBackup([]byte(`{"balances":[{"fundId":"f-1","currency":"BDT","amount":1},{"fundId":"f-1","currency":"USD","amount":2}]}`))
	assert.NoError(t, err)
}

func TestDomainLeavesDecimalJSONFormatAlone(t *testing.T) {
	assert.False(t, decimal.MarshalJSONWithoutQuotes)
}

func TestNewBackupRoundTrip(t *testing.T) {
	s := DefaultSnapshot()
	s.Balances = append(s.Balances, Balance{FundID: DefaultFundID, Currency: "BDT", Amount: dec("500")})
	s.Transactions = append(s.Transactions, Transaction{
		ID: "t-1", Type: TransactionTypeIncome, Amount: dec("500"), Currency: "BDT",
		CategoryID: "cat-inc-1", SourceFundID: DefaultFundID, Date: NewDate(2024, time.June, 1),
	})
	at := time.Date(2024, time.June, 2, 10, 0, 0, 0, time.UTC)

	data, err := EncodeBackup(NewBackup(s, at))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, BackupVersion, raw["version"])
	assert.Equal(t, "2024-06-02T10:00:00Z", raw["exportedAt"])
	assert.EqualValues(t, 500, raw["balances"].([]any)[0].(map[string]any)["amount"])

	b, err := DecodeBackup(data)
	require.NoError(t, err)
	restored := b.ApplyTo(Snapshot{})
	require.Len(t, restored.Transactions, 1)
	assert.True(t, restored.Transactions[0].Amount.Equal(dec("500")))
	assert.Equal(t, s.Funds, restored.Funds)
	assert.Equal(t, s.AvailableCurrencies, restored.AvailableCurrencies)
}
