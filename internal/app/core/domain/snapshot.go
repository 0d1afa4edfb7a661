package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultLanguage 預設介面語系
const DefaultLanguage = "en"

// Snapshot 某位使用者的完整帳本狀態 (深拷貝，可安全交給其他 goroutine)
type Snapshot struct {
	Funds               []Fund        `json:"funds"`
	Categories          []Category    `json:"categories"`
	Transactions        []Transaction `json:"transactions"`
	Balances            []Balance     `json:"balances"`
	ExchangeRates       ExchangeRates `json:"exchangeRates"`
	AvailableCurrencies []Currency    `json:"availableCurrencies"`
	Language            string        `json:"language"`
}

// Clone 深拷貝
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Funds:               make([]Fund, 0, len(s.Funds)),
		Categories:          append(make([]Category, 0, len(s.Categories)), s.Categories...),
		Transactions:        make([]Transaction, 0, len(s.Transactions)),
		Balances:            append(make([]Balance, 0, len(s.Balances)), s.Balances...),
		ExchangeRates:       s.ExchangeRates.Clone(),
		AvailableCurrencies: append(make([]Currency, 0, len(s.AvailableCurrencies)), s.AvailableCurrencies...),
		Language:            s.Language,
	}
	for _, f := range s.Funds {
		out.Funds = append(out.Funds, f.Clone())
	}
	for _, tx := range s.Transactions {
		out.Transactions = append(out.Transactions, tx.Clone())
	}
	if out.ExchangeRates == nil {
		out.ExchangeRates = ExchangeRates{}
	}
	return out
}

// DefaultSnapshot 新使用者的初始帳本
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Funds: []Fund{
			{ID: DefaultFundID, Name: "Cash", SupportedCurrencies: []Currency{"BDT", "USD", "MVR"}, IsSystemDefault: true},
		},
		Categories: []Category{
			{ID: "cat-inc-1", Name: "Salary", Type: TransactionTypeIncome, Icon: "fa-money-check-dollar"},
			{ID: "cat-inc-2", Name: "Freelance", Type: TransactionTypeIncome, Icon: "fa-laptop-code"},
			{ID: "cat-inc-3", Name: "Personal income", Type: TransactionTypeIncome, Icon: "fa-hand-holding-dollar"},
			{ID: "cat-inc-4", Name: "Others", Type: TransactionTypeIncome, Icon: "fa-circle-plus"},
			{ID: "cat-exp-1", Name: "Food", Type: TransactionTypeExpense, Icon: "fa-bowl-food"},
			{ID: "cat-exp-2", Name: "Daily usage things", Type: TransactionTypeExpense, Icon: "fa-basket-shopping"},
			{ID: "cat-exp-3", Name: "Personal expenses", Type: TransactionTypeExpense, Icon: "fa-user-tag"},
			{ID: "cat-exp-4", Name: "Family Maintenance", Type: TransactionTypeExpense, Icon: "fa-house-chimney-user"},
			{ID: "cat-exp-7", Name: "Others", Type: TransactionTypeExpense, Icon: "fa-receipt"},
		},
		Transactions: []Transaction{},
		Balances:     []Balance{},
		ExchangeRates: ExchangeRates{
			"USD": decimal.NewFromInt(110),
			"MVR": decimal.RequireFromString("7.14"),
			"EUR": decimal.NewFromInt(120),
			"BDT": decimal.NewFromInt(1),
		},
		AvailableCurrencies: []Currency{"BDT", "USD", "MVR", "EUR"},
		Language:            DefaultLanguage,
	}
}

// UserKey 持久化的分區鍵；不同使用者的快照互不相交
type UserKey string

// GuestKey 未登入時使用的鍵
const GuestKey UserKey = "guest"

// NewUserKey 由登入身分 (email) 產生分區鍵
//
// 參數:
//
//	identity: 使用者身分，空字串代表訪客
//
// 回傳:
//
//	UserKey: "guest" 或 "user:<小寫身分>"
func NewUserKey(identity string) UserKey {
	identity = strings.ToLower(strings.TrimSpace(identity))
	if identity == "" {
		return GuestKey
	}
	return UserKey("user:" + identity)
}

func (k UserKey) String() string { return string(k) }
