package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 依 USD 毛額選級距的 Western Union 表
const (
	GrossTableBangladeshNepal = "Bangladesh/Nepal"
	GrossTableSriLankaIndia   = "Sri Lanka/India"
	GrossTablePakistan        = "Pakistan"
)

// GrossFeeTables 以毛額 (含手續費) 落點選級距的手續費表
var GrossFeeTables = map[string][]FeeTier{
	GrossTableBangladeshNepal: {tier(1, 500, 4), tier(501, 1000, 6), tier(1001, 3000, 8)},
	GrossTableSriLankaIndia:   {tier(1, 500, 5), tier(501, 1000, 8), tier(1001, 3000, 10)},
	GrossTablePakistan:        {tier(1, 3000, 10)},
}

// ReferenceRates 換算 USD 毛額用的參考匯率 (1 USD 兌多少)
type ReferenceRates struct {
	USDMVR decimal.Decimal `json:"usdMvr"`
	USDBDT decimal.Decimal `json:"usdBdt"`
}

// DefaultReferenceRates 預設參考匯率
var DefaultReferenceRates = ReferenceRates{
	USDMVR: decimal.RequireFromString("20.20"),
	USDBDT: decimal.RequireFromString("125.46"),
}

// WithDefaults 未填 (<= 0) 的匯率改用預設值
func (r ReferenceRates) WithDefaults() ReferenceRates {
	if !r.USDMVR.IsPositive() {
		r.USDMVR = DefaultReferenceRates.USDMVR
	}
	if !r.USDBDT.IsPositive() {
		r.USDBDT = DefaultReferenceRates.USDBDT
	}
	return r
}

// GrossTierFee 毛額落在 [Min, Max] 的級距手續費；沒有落點時 (含小數落在兩級之間) 用最後一級
func GrossTierFee(tiers []FeeTier, gross decimal.Decimal) decimal.Decimal {
	if len(tiers) == 0 {
		return decimal.Zero
	}
	for _, t := range tiers {
		if gross.GreaterThanOrEqual(t.Min) && gross.LessThanOrEqual(t.Max) {
			return t.Fee
		}
	}
	return tiers[len(tiers)-1].Fee
}

func entryCurrency(c Currency) Currency {
	if c = NormalizeCurrency(string(c)); c == "" {
		return "USD"
	}
	return c
}

// usdGross 把輸入金額換成 USD；匯率 <= 0 時為 0
func usdGross(amount decimal.Decimal, entry Currency, perUSD map[Currency]decimal.Decimal) (decimal.Decimal, error) {
	if entry == "USD" {
		return amount, nil
	}
	rate, ok := perUSD[entry]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q cannot be used as the entry currency", ErrInvalidCurrency, entry)
	}
	if !rate.IsPositive() {
		return decimal.Zero, nil
	}
	return amount.Div(rate), nil
}

// WesternUnionGrossQuote 以 USD 毛額選級距的 Western Union 試算，收款幣別固定為 BDT
//
// 參數:
//
//	table: 級距表名稱 (見 GrossFeeTables)，空字串為 Bangladesh/Nepal
//	amount: 手上的總額 (含手續費)
//	entry: amount 的幣別，USD (空字串) / MVR / BDT
//	refs: 參考匯率
//	incentivePct: 政府獎勵百分比 (e.g. 2.5)
//
// 回傳:
//
//	RemittanceQuote: Total 為最終 BDT，TotalPaidMVR 為毛額換算的 MVR
//	error: 級距表不存在 (ErrUnknownCountry) 或幣別不支援 (ErrInvalidCurrency)
func WesternUnionGrossQuote(table string, amount decimal.Decimal, entry Currency, refs ReferenceRates, incentivePct decimal.Decimal) (RemittanceQuote, error) {
	if table == "" {
		table = GrossTableBangladeshNepal
	}
	tiers, ok := GrossFeeTables[table]
	if !ok {
		return RemittanceQuote{}, fmt.Errorf("%w: %q", ErrUnknownCountry, table)
	}
	entry = entryCurrency(entry)
	gross, err := usdGross(amount, entry, map[Currency]decimal.Decimal{"MVR": refs.USDMVR, "BDT": refs.USDBDT})
	if err != nil {
		return RemittanceQuote{}, err
	}

	q := quote(gross, refs.USDBDT, GrossTierFee(tiers, gross), incentivePct)
	paid := gross.Mul(refs.USDMVR)
	q.Country = table
	q.PayoutCurrency = BaseCurrency
	q.EntryCurrency = entry
	q.TotalPaidMVR = &paid
	return q, nil
}

// BankTransferQuote 一般銀行試算：手續費 (USD) 與 BDT 匯率由呼叫端提供，另可加減固定的 BDT 金額
//
// 參數:
//
//	amount: 手上的總額 (含手續費)
//	entry: amount 的幣別，USD / MVR / BDT；BDT 以 bdtRate 換回 USD
//	usdMVR: MVR 參考匯率
//	bdtRate: 銀行的 1 USD 兌 BDT 匯率
//	fee: USD 手續費
//	adjustment: 最終 BDT 的加減 (e.g. 銀行另收的費用為負數)
//
// 回傳:
//
//	RemittanceQuote: Total = NetPrincipal*bdtRate + adjustment
//	error: 幣別不支援
func BankTransferQuote(amount decimal.Decimal, entry Currency, usdMVR, bdtRate, fee, adjustment decimal.Decimal) (RemittanceQuote, error) {
	entry = entryCurrency(entry)
	gross, err := usdGross(amount, entry, map[Currency]decimal.Decimal{"MVR": usdMVR, "BDT": bdtRate})
	if err != nil {
		return RemittanceQuote{}, err
	}

	q := quote(gross, bdtRate, fee, decimal.Zero)
	paid := gross.Mul(usdMVR)
	q.PayoutCurrency = BaseCurrency
	q.EntryCurrency = entry
	q.Adjustment = adjustment
	q.Total = q.Base.Add(adjustment)
	q.TotalPaidMVR = &paid
	return q, nil
}
