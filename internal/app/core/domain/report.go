package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnknownCategoryName 找不到分類時的顯示名稱
const UnknownCategoryName = "Other"

// CurrencySummary 單一幣別的收入、支出與目前可用餘額
type CurrencySummary struct {
	Currency  Currency        `json:"currency"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Available decimal.Decimal `json:"available"`
}

// CategoryTotal 依分類名稱加總的金額
type CategoryTotal struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// DayFlow 單日收支
type DayFlow struct {
	Date    Date            `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// FundBalance 餘額格金額，不存在時為 0
func (s Snapshot) FundBalance(fundID string, currency Currency) decimal.Decimal {
	for _, b := range s.Balances {
		if b.FundID == fundID && b.Currency == currency {
			return b.Amount
		}
	}
	return decimal.Zero
}

// SumByCurrency 所有帳戶在該幣別的餘額合計
func (s Snapshot) SumByCurrency(currency Currency) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range s.Balances {
		if b.Currency == currency {
			sum = sum.Add(b.Amount)
		}
	}
	return sum
}

// TotalBalanceIn 以 exchangeRates 換算所有餘額後的總資產
//
// 先換算成 BaseCurrency，目標不是 BaseCurrency 時再除以目標匯率；查無匯率視為 1
func (s Snapshot) TotalBalanceIn(target Currency) decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Balances {
		total = total.Add(b.Amount.Mul(s.ExchangeRates.RateOf(b.Currency)))
	}
	if target == BaseCurrency {
		return total
	}
	return total.Div(s.ExchangeRates.RateOf(target))
}

// CurrencySummary 依 AvailableCurrencies 順序列出各幣別摘要，全為 0 的幣別略過
func (s Snapshot) CurrencySummary() []CurrencySummary {
	out := make([]CurrencySummary, 0, len(s.AvailableCurrencies))
	for _, c := range s.AvailableCurrencies {
		sum := CurrencySummary{Currency: c, Income: decimal.Zero, Expense: decimal.Zero, Available: s.SumByCurrency(c)}
		for i := range s.Transactions {
			tx := &s.Transactions[i]
			if !tx.Active() || tx.Currency != c {
				continue
			}
			switch tx.Type {
			case TransactionTypeIncome:
				sum.Income = sum.Income.Add(tx.Amount)
			case TransactionTypeExpense:
				sum.Expense = sum.Expense.Add(tx.Amount)
			}
		}
		if sum.Income.IsZero() && sum.Expense.IsZero() && sum.Available.IsZero() {
			continue
		}
		out = append(out, sum)
	}
	return out
}

// CategoryBreakdown 指定幣別與類型的使用中交易，依分類名稱加總並由大到小排序
func (s Snapshot) CategoryBreakdown(currency Currency, typ TransactionType) []CategoryTotal {
	names := make(map[string]string, len(s.Categories))
	for _, c := range s.Categories {
		names[c.ID] = c.Name
	}

	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for i := range s.Transactions {
		tx := &s.Transactions[i]
		if !tx.Active() || tx.Currency != currency || tx.Type != typ {
			continue
		}
		name, ok := names[tx.CategoryID]
		if !ok {
			name = UnknownCategoryName
		}
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] = totals[name].Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryTotal{Name: name, Amount: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	return out
}

// DailyFlow 以 end 為最後一天、往前共 days 天的每日收支 (舊到新)
func (s Snapshot) DailyFlow(currency Currency, end Date, days int) []DayFlow {
	if days <= 0 {
		return []DayFlow{}
	}
	out := make([]DayFlow, days)
	index := make(map[Date]int, days)
	for i := 0; i < days; i++ {
		d := end.AddDays(i - days + 1)
		out[i] = DayFlow{Date: d, Income: decimal.Zero, Expense: decimal.Zero}
		index[d] = i
	}
	for i := range s.Transactions {
		tx := &s.Transactions[i]
		if !tx.Active() || tx.Currency != currency {
			continue
		}
		j, ok := index[tx.Date]
		if !ok {
			continue
		}
		switch tx.Type {
		case TransactionTypeIncome:
			out[j].Income = out[j].Income.Add(tx.Amount)
		case TransactionTypeExpense:
			out[j].Expense = out[j].Expense.Add(tx.Amount)
		}
	}
	return out
}

// Trash 垃圾桶中的交易
func (s Snapshot) Trash() []Transaction {
	out := make([]Transaction, 0)
	for _, tx := range s.Transactions {
		if !tx.Active() {
			out = append(out, tx.Clone())
		}
	}
	return out
}

// FundHoldings 某帳戶所有非零的餘額格
func (s Snapshot) FundHoldings(fundID string) []Balance {
	out := make([]Balance, 0)
	for _, b := range s.Balances {
		if b.FundID == fundID && !b.Amount.IsZero() {
			out = append(out, b)
		}
	}
	return out
}
