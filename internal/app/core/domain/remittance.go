package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Corridor 匯款手續費級距表的名稱
type Corridor string

const (
	CorridorSouthAsiaA Corridor = "SOUTH_ASIA_A"
	CorridorSriLanka   Corridor = "SRI_LANKA"
	CorridorIndia      Corridor = "INDIA"
	CorridorPakistan   Corridor = "PAKISTAN"
	CorridorEastAsia   Corridor = "EAST_ASIA"
	CorridorGlobal     Corridor = "GLOBAL"
)

// FeeTier 手續費級距，Min/Max 為實際匯出本金 (USD) 的範圍
type FeeTier struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
	Fee decimal.Decimal `json:"fee"`
}

func tier(min, max, fee int64) FeeTier {
	return FeeTier{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max), Fee: decimal.NewFromInt(fee)}
}

// FeeTables 各路線的 Western Union 級距表
var FeeTables = map[Corridor][]FeeTier{
	CorridorSouthAsiaA: {tier(1, 500, 4), tier(501, 1000, 6), tier(1001, 3000, 8)},
	CorridorSriLanka:   {tier(1, 500, 5), tier(501, 1000, 7), tier(1001, 3000, 9)},
	CorridorIndia:      {tier(1, 250, 4), tier(251, 500, 5), tier(501, 1000, 7), tier(1001, 2400, 9)},
	CorridorPakistan:   {tier(1, 3000, 10)},
	CorridorEastAsia:   {tier(1, 500, 8), tier(501, 1000, 13), tier(1001, 1500, 18), tier(1501, 2000, 28), tier(2001, 3000, 36)},
	CorridorGlobal: {
		tier(1, 85, 13), tier(86, 212, 21), tier(213, 340, 30), tier(341, 425, 34), tier(426, 510, 42),
		tier(511, 595, 47), tier(596, 765, 55), tier(766, 892, 64), tier(893, 1020, 74), tier(1021, 1274, 86),
		tier(1275, 1487, 94), tier(1488, 1742, 105), tier(1743, 1997, 116), tier(1998, 2507, 133), tier(2508, 3017, 152),
	},
}

// CountryConfig 收款國家使用的級距表與收款幣別
type CountryConfig struct {
	Corridor Corridor `json:"corridor"`
	Currency Currency `json:"currency"`
}

// Countries 支援試算的收款國家
var Countries = map[string]CountryConfig{
	"Bangladesh":      {Corridor: CorridorSouthAsiaA, Currency: "BDT"},
	"Nepal":           {Corridor: CorridorSouthAsiaA, Currency: "NPR"},
	"Sri Lanka":       {Corridor: CorridorSriLanka, Currency: "LKR"},
	"India":           {Corridor: CorridorIndia, Currency: "INR"},
	"Pakistan":        {Corridor: CorridorPakistan, Currency: "PKR"},
	"Thailand":        {Corridor: CorridorEastAsia, Currency: "THB"},
	"Indonesia":       {Corridor: CorridorEastAsia, Currency: "IDR"},
	"Philippines":     {Corridor: CorridorEastAsia, Currency: "PHP"},
	"China":           {Corridor: CorridorEastAsia, Currency: "CNY"},
	"Other Countries": {Corridor: CorridorGlobal, Currency: "LCL"},
}

// CountryNames 依字母排序的國家清單
func CountryNames() []string {
	names := make([]string, 0, len(Countries))
	for name := range Countries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemittanceQuote 匯款試算結果
type RemittanceQuote struct {
	Country        string          `json:"country,omitempty"`
	PayoutCurrency Currency        `json:"payoutCurrency,omitempty"`
	Fee            decimal.Decimal `json:"fee"`
	NetPrincipal   decimal.Decimal `json:"netPrincipal"`
	Base           decimal.Decimal `json:"base"`
	Bonus          decimal.Decimal `json:"bonus"`
	Total          decimal.Decimal `json:"total"`
	// Gross 含手續費的 USD 總額
	Gross decimal.Decimal `json:"gross"`
	// Adjustment 收款幣別的額外加減 (只有銀行試算使用)
	Adjustment decimal.Decimal `json:"adjustment"`
	// EntryCurrency 輸入金額的幣別
	EntryCurrency Currency `json:"entryCurrency,omitempty"`
	// TotalPaidMVR 毛額換算的 MVR 實付總額，只有依毛額計算的試算會填
	TotalPaidMVR *decimal.Decimal `json:"totalPaidMvr,omitempty"`
}

// TierFee 由手上總額 (含手續費) 反推適用級距的手續費
//
// 依序檢查每一級：扣除該級手續費後的本金落在 [Min, Max] 或低於 Min 即採用；都不符合時用最後一級
func TierFee(tiers []FeeTier, totalInHand decimal.Decimal) decimal.Decimal {
	if !totalInHand.IsPositive() || len(tiers) == 0 {
		return decimal.Zero
	}
	for _, t := range tiers {
		principal := totalInHand.Sub(t.Fee)
		if principal.LessThan(t.Min) || principal.LessThanOrEqual(t.Max) {
			return t.Fee
		}
	}
	return tiers[len(tiers)-1].Fee
}

// WesternUnionQuote Western Union 試算
//
// 參數:
//
//	country: 收款國家 (見 Countries)
//	totalInHand: 手上的 USD 總額，含手續費
//	rate: 1 USD 兌收款幣別的匯率
//	bonusPct: 政府獎勵百分比 (e.g. 2.5)
//
// 回傳:
//
//	RemittanceQuote: 試算結果
//	error: 國家不存在時回傳 ErrUnknownCountry
func WesternUnionQuote(country string, totalInHand, rate, bonusPct decimal.Decimal) (RemittanceQuote, error) {
	cfg, ok := Countries[country]
	if !ok {
		return RemittanceQuote{}, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	fee := TierFee(FeeTables[cfg.Corridor], totalInHand)
	q := quote(totalInHand, rate, fee, bonusPct)
	q.Country = country
	q.PayoutCurrency = cfg.Currency
	return q, nil
}

// ManualQuote 其他銀行試算，手續費由呼叫端提供
func ManualQuote(amount, rate, fee, bonusPct decimal.Decimal) RemittanceQuote {
	return quote(amount, rate, fee, bonusPct)
}

func quote(total, rate, fee, bonusPct decimal.Decimal) RemittanceQuote {
	net := total.Sub(fee)
	if net.IsNegative() {
		net = decimal.Zero
	}
	base := net.Mul(rate)
	bonus := base.Mul(bonusPct).Div(decimal.NewFromInt(100))
	return RemittanceQuote{
		Fee:          fee,
		NetPrincipal: net,
		Base:         base,
		Bonus:        bonus,
		Total:        base.Add(bonus),
		Gross:        total,
	}
}
