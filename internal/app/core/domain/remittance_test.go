package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFee(t *testing.T) {
	tiers := FeeTables[CorridorSouthAsiaA]
	tests := []struct {
		total string
		want  string
	}{
		{"0", "0"},
		{"3", "4"},
		{"100", "4"},
		{"504", "4"},
		{"505", "6"},
		{"1006", "6"},
		{"1007", "8"},
		{"5000", "8"},
	}
	for _, tt := range tests {
		got := TierFee(tiers, dec(tt.total))
		assert.True(t, got.Equal(dec(tt.want)), "total %s: fee %s, want %s", tt.total, got, tt.want)
	}
}

func TestWesternUnionQuote(t *testing.T) {
	q, err := WesternUnionQuote("Bangladesh", dec("504"), dec("120"), dec("2.5"))
	require.NoError(t, err)

	assert.Equal(t, Currency("BDT"), q.PayoutCurrency)
	assert.True(t, q.Fee.Equal(dec("4")))
	assert.True(t, q.NetPrincipal.Equal(dec("500")))
	assert.True(t, q.Base.Equal(dec("60000")))
	assert.True(t, q.Bonus.Equal(dec("1500")))
	assert.True(t, q.Total.Equal(dec("61500")))

	_, err = WesternUnionQuote("Atlantis", dec("100"), dec("1"), decimal.Zero)
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestManualQuote(t *testing.T) {
	q := ManualQuote(dec("3"), dec("110"), dec("5"), dec("10"))
	assert.True(t, q.NetPrincipal.IsZero(), "net never goes negative")
	assert.True(t, q.Total.IsZero())

	q = ManualQuote(dec("105"), dec("110"), dec("5"), decimal.Zero)
	assert.True(t, q.Total.Equal(dec("11000")))
}

func TestCountriesHaveTables(t *testing.T) {
	for _, name := range CountryNames() {
		_, ok := FeeTables[Countries[name].Corridor]
		assert.True(t, ok, name)
	}
}

func TestGrossTierFee(t *testing.T) {
	tiers := GrossFeeTables[GrossTableSriLankaIndia]
	tests := []struct {
		gross string
		want  string
	}{
		{"1", "5"},
		{"500", "5"},
		{"500.5", "10"}, // 兩級之間沒有落點，用最後一級
		{"501", "8"},
		{"1000", "8"},
		{"3000", "10"},
		{"0", "10"},
		{"9000", "10"},
	}
	for _, tt := range tests {
		got := GrossTierFee(tiers, dec(tt.gross))
		assert.True(t, got.Equal(dec(tt.want)), "gross %s: fee %s, want %s", tt.gross, got, tt.want)
	}
}

func TestWesternUnionGrossQuote(t *testing.T) {
	refs := ReferenceRates{USDMVR: dec("20"), USDBDT: dec("125")}

	// 10000 MVR = 500 USD，落在第一級
	q, err := WesternUnionGrossQuote("", dec("10000"), "mvr", refs, dec("2.5"))
	require.NoError(t, err)
	assert.Equal(t, GrossTableBangladeshNepal, q.Country)
	assert.Equal(t, Currency("MVR"), q.EntryCurrency)
	assert.Equal(t, Currency("BDT"), q.PayoutCurrency)
	assert.True(t, q.Gross.Equal(dec("500")), "gross %s", q.Gross)
	assert.True(t, q.Fee.Equal(dec("4")))
	assert.True(t, q.NetPrincipal.Equal(dec("496")))
	assert.True(t, q.Base.Equal(dec("62000")))
	assert.True(t, q.Bonus.Equal(dec("1550")))
	assert.True(t, q.Total.Equal(dec("63550")))
	require.NotNil(t, q.TotalPaidMVR)
	assert.True(t, q.TotalPaidMVR.Equal(dec("10000")))

	q, err = WesternUnionGrossQuote(GrossTablePakistan, dec("62500"), "BDT", refs, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, q.Gross.Equal(dec("500")))
	assert.True(t, q.Fee.Equal(dec("10")))
	assert.True(t, q.Total.Equal(dec("61250")))

	q, err = WesternUnionGrossQuote(GrossTableSriLankaIndia, dec("600"), "", refs, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, Currency("USD"), q.EntryCurrency)
	assert.True(t, q.Fee.Equal(dec("8")))
	assert.True(t, q.TotalPaidMVR.Equal(dec("12000")))

	_, err = WesternUnionGrossQuote("Atlantis", dec("100"), "USD", refs, decimal.Zero)
	assert.ErrorIs(t, err, ErrUnknownCountry)
	_, err = WesternUnionGrossQuote("", dec("100"), "EUR", refs, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestBankTransferQuote(t *testing.T) {
	q, err := BankTransferQuote(dec("100"), "USD", dec("20"), dec("120"), dec("5"), dec("-200"))
	require.NoError(t, err)
	assert.True(t, q.NetPrincipal.Equal(dec("95")))
	assert.True(t, q.Base.Equal(dec("11400")))
	assert.True(t, q.Adjustment.Equal(dec("-200")))
	assert.True(t, q.Total.Equal(dec("11200")))
	assert.True(t, q.Bonus.IsZero())
	assert.True(t, q.TotalPaidMVR.Equal(dec("2000")))

	// BDT 以銀行匯率換回 USD
	q, err = BankTransferQuote(dec("12000"), "BDT", dec("20"), dec("120"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, q.Gross.Equal(dec("100")))
	assert.True(t, q.Total.Equal(dec("12000")))

	// 沒有 MVR 匯率時毛額為 0，只剩調整金額
	q, err = BankTransferQuote(dec("2000"), "MVR", decimal.Zero, dec("120"), dec("5"), dec("50"))
	require.NoError(t, err)
	assert.True(t, q.Gross.IsZero())
	assert.True(t, q.NetPrincipal.IsZero())
	assert.True(t, q.Total.Equal(dec("50")))
}

func TestReferenceRatesDefaults(t *testing.T) {
	r := ReferenceRates{USDBDT: dec("130")}.WithDefaults()
	assert.True(t, r.USDMVR.Equal(dec("20.20")))
	assert.True(t, r.USDBDT.Equal(dec("130")))
}
