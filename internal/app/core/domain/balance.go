package domain

import "github.com/shopspring/decimal"

// BalanceKey 餘額格的鍵 (fund, currency)
type BalanceKey struct {
	FundID   string
	Currency Currency
}

// Balance 某帳戶某幣別的累計餘額 (可為負數)
type Balance struct {
	FundID   string          `json:"fundId"`
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// Key 回傳餘額格的鍵
func (b Balance) Key() BalanceKey {
	return BalanceKey{FundID: b.FundID, Currency: b.Currency}
}

// Effect 一筆交易對單一餘額格的調整量
type Effect struct {
	Key   BalanceKey
	Delta decimal.Decimal
}

// Drift 儲存的餘額與由交易重算的餘額不一致
type Drift struct {
	Key      BalanceKey      `json:"-"`
	FundID   string          `json:"fundId"`
	Currency Currency        `json:"currency"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
}
