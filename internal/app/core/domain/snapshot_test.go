package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserKey(t *testing.T) {
	assert.Equal(t, GuestKey, NewUserKey(""))
	assert.Equal(t, GuestKey, NewUserKey("   "))
	assert.Equal(t, UserKey("user:alice@example.com"), NewUserKey("Alice@Example.com"))
	assert.NotEqual(t, NewUserKey("a@x.io"), NewUserKey("b@x.io"))
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := DefaultSnapshot()
	c := s.Clone()

	c.Funds[0].SupportedCurrencies[0] = "EUR"
	c.ExchangeRates["USD"] = dec("1")
	c.AvailableCurrencies[0] = "XXX"

	assert.Equal(t, Currency("BDT"), s.Funds[0].SupportedCurrencies[0])
	assert.True(t, s.ExchangeRates["USD"].Equal(dec("110")))
	assert.Equal(t, Currency("BDT"), s.AvailableCurrencies[0])
}

func TestDefaultSnapshotSeeds(t *testing.T) {
	s := DefaultSnapshot()
	assert.Len(t, s.Funds, 1)
	assert.True(t, s.Funds[0].Protected())
	assert.Len(t, s.Categories, 9)
	for _, c := range s.Categories {
		assert.True(t, ValidCategoryType(c.Type), c.ID)
	}
	assert.Equal(t, []Currency{"BDT", "USD", "MVR", "EUR"}, s.AvailableCurrencies)
}

func TestNormalizeCurrencySet(t *testing.T) {
	got := NormalizeCurrencySet([]Currency{" usd", "USD", "b", "bdt"})
	assert.Equal(t, []Currency{"USD", "BDT"}, got)
	assert.ErrorIs(t, ValidateFund("Bank", []Currency{"x"}), ErrInvalidCurrency)
	assert.ErrorIs(t, ValidateFund(" ", []Currency{"USD"}), ErrEmptyName)
}
