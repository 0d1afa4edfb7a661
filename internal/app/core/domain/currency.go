package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency 幣別代碼 (e.g. BDT, USD, MVR)
type Currency string

// BaseCurrency 匯率表的基準幣別
const BaseCurrency Currency = "BDT"

// minCurrencyCodeLen 幣別代碼最短長度
const minCurrencyCodeLen = 2

// NormalizeCurrency 去除空白並轉為大寫
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

// Valid 是否為可用的幣別代碼
func (c Currency) Valid() bool {
	return len(c) >= minCurrencyCodeLen
}

func (c Currency) String() string { return string(c) }

// ExchangeRates 各幣別對 BaseCurrency 的最後已知匯率，僅供參考
// 轉帳使用交易本身記錄的 ExchangeRate
type ExchangeRates map[Currency]decimal.Decimal

// RateOf 取得匯率，查無資料時視為 1
func (r ExchangeRates) RateOf(c Currency) decimal.Decimal {
	if rate, ok := r[c]; ok && rate.IsPositive() {
		return rate
	}
	return decimal.NewFromInt(1)
}

// Clone 複製匯率表
func (r ExchangeRates) Clone() ExchangeRates {
	if r == nil {
		return nil
	}
	out := make(ExchangeRates, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ContainsCurrency 判斷幣別是否在清單內
func ContainsCurrency(list []Currency, c Currency) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}
