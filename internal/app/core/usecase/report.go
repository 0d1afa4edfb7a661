package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

// DefaultFlowDays 每日收支預設天數
const DefaultFlowDays = 7

// SummaryQuery 儀表板 / 報表查詢條件，零值欄位使用預設
type SummaryQuery struct {
	// Currency 分類統計與每日收支的幣別，預設為 AvailableCurrencies 第一個
	Currency domain.Currency `json:"currency,omitempty"`
	// Type 分類統計的類型，預設為支出
	Type domain.TransactionType `json:"type,omitempty"`
	// TotalIn 總資產的換算幣別，預設為 BaseCurrency
	TotalIn domain.Currency `json:"totalIn,omitempty"`
	// End 每日收支的最後一天，預設為今天
	End  domain.Date `json:"end,omitempty"`
	Days int         `json:"days,omitempty"`
}

// Summary 聚合查詢結果
type Summary struct {
	TotalIn      domain.Currency          `json:"totalIn"`
	TotalBalance decimal.Decimal          `json:"totalBalance"`
	Currencies   []domain.CurrencySummary `json:"currencies"`
	Currency     domain.Currency          `json:"currency"`
	Categories   []domain.CategoryTotal   `json:"categories"`
	DailyFlow    []domain.DayFlow         `json:"dailyFlow"`
	TrashCount   int                      `json:"trashCount"`
}

// Summary 計算儀表板與報表的彙總資料
func (c *CoreUseCase) Summary(ctx context.Context, q SummaryQuery) (Summary, error) {
	s, err := c.ledger.Snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}

	currency := domain.NormalizeCurrency(string(q.Currency))
	if currency == "" {
		currency = domain.BaseCurrency
		if len(s.AvailableCurrencies) > 0 {
			currency = s.AvailableCurrencies[0]
		}
	}
	typ := q.Type
	if typ == "" {
		typ = domain.TransactionTypeExpense
	}
	if !domain.ValidCategoryType(typ) {
		return Summary{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategoryType, typ)
	}
	totalIn := domain.NormalizeCurrency(string(q.TotalIn))
	if totalIn == "" {
		totalIn = domain.BaseCurrency
	}
	end := q.End
	if end.IsZero() {
		end = domain.DateOf(c.now())
	}
	days := q.Days
	if days <= 0 {
		days = DefaultFlowDays
	}

	return Summary{
		TotalIn:      totalIn,
		TotalBalance: s.TotalBalanceIn(totalIn),
		Currencies:   s.CurrencySummary(),
		Currency:     currency,
		Categories:   s.CategoryBreakdown(currency, typ),
		DailyFlow:    s.DailyFlow(currency, end, days),
		TrashCount:   len(s.Trash()),
	}, nil
}

// RemittanceProvider 匯款試算的管道
type RemittanceProvider string

const (
	ProviderWesternUnion RemittanceProvider = "WU"
	ProviderManual       RemittanceProvider = "MANUAL"
	// ProviderWesternUnionGross 以 USD 毛額選級距，輸入可為 USD / MVR / BDT
	ProviderWesternUnionGross RemittanceProvider = "WU_GROSS"
	// ProviderBank 一般銀行，輸入可為 USD / MVR / BDT，可加減 BDT
	ProviderBank RemittanceProvider = "BANK"
)

// RemittanceRequest 匯款試算輸入
type RemittanceRequest struct {
	Provider RemittanceProvider `json:"provider"`
	// Country WU 的收款國家，WU_GROSS 的級距表名稱
	Country string          `json:"country,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	// Rate WU_GROSS 不使用 (改用 References.USDBDT)
	Rate decimal.Decimal `json:"rate"`
	// Fee MANUAL 與 BANK 使用
	Fee      decimal.Decimal `json:"fee"`
	BonusPct decimal.Decimal `json:"bonusPct"`
	// EntryCurrency WU_GROSS / BANK 的輸入幣別，空字串為 USD
	EntryCurrency domain.Currency `json:"entryCurrency,omitempty"`
	// References WU_GROSS / BANK 的參考匯率，未填的使用 domain.DefaultReferenceRates
	References domain.ReferenceRates `json:"references"`
	// Adjustment 只有 BANK 使用
	Adjustment decimal.Decimal `json:"adjustment"`
}

// QuoteRemittance 匯款試算，不改變帳本
func (c *CoreUseCase) QuoteRemittance(req RemittanceRequest) (domain.RemittanceQuote, error) {
	switch RemittanceProvider(strings.ToUpper(string(req.Provider))) {
	case ProviderWesternUnion, "":
		return domain.WesternUnionQuote(req.Country, req.Amount, req.Rate, req.BonusPct)
	case ProviderManual:
		return domain.ManualQuote(req.Amount, req.Rate, req.Fee, req.BonusPct), nil
	case ProviderWesternUnionGross:
		return domain.WesternUnionGrossQuote(req.Country, req.Amount, req.EntryCurrency, req.References.WithDefaults(), req.BonusPct)
	case ProviderBank:
		refs := req.References.WithDefaults()
		return domain.BankTransferQuote(req.Amount, req.EntryCurrency, refs.USDMVR, req.Rate, req.Fee, req.Adjustment)
	}
	return domain.RemittanceQuote{}, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, req.Provider)
}
