package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType 交易類型
type TransactionType string

const (
	// 收入
	TransactionTypeIncome TransactionType = "INCOME"
	// 支出
	TransactionTypeExpense TransactionType = "EXPENSE"
	// 轉帳 (可跨帳戶、跨幣別)
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// TransferCategoryID 轉帳固定使用的分類
const TransferCategoryID = "transfer"

// Valid 是否為已知類型
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// ParseTransactionType 不分大小寫解析交易類型
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
	return t, nil
}

// Transaction 一筆已入帳的交易，除了軟刪除欄位之外不可變更
//
// Amount 一律以 Currency 表示且為正數；Target* 欄位只有轉帳才有
type Transaction struct {
	ID             string           `json:"id"`
	Type           TransactionType  `json:"type"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       Currency         `json:"currency"`
	CategoryID     string           `json:"categoryId"`
	SourceFundID   string           `json:"sourceFundId"`
	TargetFundID   string           `json:"targetFundId,omitempty"`
	TargetCurrency Currency         `json:"targetCurrency,omitempty"`
	ExchangeRate   *decimal.Decimal `json:"exchangeRate,omitempty"`
	Date           Date             `json:"date"`
	Note           string           `json:"note"`
	ProofImage     string           `json:"proofImage,omitempty"`
	IsCommitment   bool             `json:"isCommitment,omitempty"`
	IsDeleted      bool             `json:"isDeleted,omitempty"`
	DeletedAt      *time.Time       `json:"deletedAt,omitempty"`
}

// Active 是否未被丟入垃圾桶
func (t *Transaction) Active() bool { return !t.IsDeleted }

// HasTargetLeg 轉帳的入帳端是否完整 (目標帳戶、目標幣別、非零匯率)
func (t *Transaction) HasTargetLeg() bool {
	return t.TargetFundID != "" && t.TargetCurrency != "" && t.ExchangeRate != nil && !t.ExchangeRate.IsZero()
}

// TargetAmount 入帳端金額 = Amount * ExchangeRate
func (t *Transaction) TargetAmount() decimal.Decimal {
	if t.ExchangeRate == nil {
		return decimal.Zero
	}
	return t.Amount.Mul(*t.ExchangeRate)
}

// Effects 回傳交易入帳時 (sign = +1) 對各餘額格的影響
//
// 轉帳缺少入帳端欄位時只回傳扣款端
func (t *Transaction) Effects() []Effect {
	// 最多兩筆，預先配置容量
	effects := make([]Effect, 0, 2)
	source := BalanceKey{FundID: t.SourceFundID, Currency: t.Currency}
	switch t.Type {
	case TransactionTypeIncome:
		effects = append(effects, Effect{Key: source, Delta: t.Amount})
	case TransactionTypeExpense:
		effects = append(effects, Effect{Key: source, Delta: t.Amount.Neg()})
	case TransactionTypeTransfer:
		effects = append(effects, Effect{Key: source, Delta: t.Amount.Neg()})
		if t.HasTargetLeg() {
			target := BalanceKey{FundID: t.TargetFundID, Currency: t.TargetCurrency}
			effects = append(effects, Effect{Key: target, Delta: t.TargetAmount()})
		}
	}
	return effects
}

// Clone 深拷貝 (指標欄位各自複製)
func (t Transaction) Clone() Transaction {
	if t.ExchangeRate != nil {
		rate := *t.ExchangeRate
		t.ExchangeRate = &rate
	}
	if t.DeletedAt != nil {
		at := *t.DeletedAt
		t.DeletedAt = &at
	}
	return t
}

// TransactionDraft 建立交易的輸入，ID 由帳本產生
type TransactionDraft struct {
	Type           TransactionType  `json:"type"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       Currency         `json:"currency"`
	CategoryID     string           `json:"categoryId"`
	SourceFundID   string           `json:"sourceFundId"`
	TargetFundID   string           `json:"targetFundId,omitempty"`
	TargetCurrency Currency         `json:"targetCurrency,omitempty"`
	ExchangeRate   *decimal.Decimal `json:"exchangeRate,omitempty"`
	Date           Date             `json:"date"`
	Note           string           `json:"note"`
	ProofImage     string           `json:"proofImage,omitempty"`
	IsCommitment   bool             `json:"isCommitment,omitempty"`
}

// Validate 檢查草稿，錯誤時不會有任何部分寫入
func (d TransactionDraft) Validate() error {
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, d.Type)
	}
	if !d.Amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	if d.Currency == "" {
		return ErrMissingCurrency
	}
	if d.SourceFundID == "" {
		return ErrMissingSourceFund
	}

	hasTarget := d.TargetFundID != "" || d.TargetCurrency != "" || d.ExchangeRate != nil
	if d.Type != TransactionTypeTransfer {
		if hasTarget {
			return ErrUnexpectedTarget
		}
		return nil
	}

	if d.TargetFundID == "" || d.TargetCurrency == "" || d.ExchangeRate == nil || !d.ExchangeRate.IsPositive() {
		return ErrIncompleteTransfer
	}
	if d.TargetFundID == d.SourceFundID && d.TargetCurrency == d.Currency {
		return ErrSameTransferEndpoint
	}
	return nil
}

// Build 以指定 ID 產生交易；轉帳一律套用 TransferCategoryID
func (d TransactionDraft) Build(id string) Transaction {
	tx := Transaction{
		ID:             id,
		Type:           d.Type,
		Amount:         d.Amount,
		Currency:       d.Currency,
		CategoryID:     d.CategoryID,
		SourceFundID:   d.SourceFundID,
		TargetFundID:   d.TargetFundID,
		TargetCurrency: d.TargetCurrency,
		Date:           d.Date,
		Note:           d.Note,
		ProofImage:     d.ProofImage,
		IsCommitment:   d.IsCommitment,
	}
	if d.ExchangeRate != nil {
		rate := *d.ExchangeRate
		tx.ExchangeRate = &rate
	}
	if d.Type == TransactionTypeTransfer {
		tx.CategoryID = TransferCategoryID
	}
	return tx
}

// Normalize 統一幣別代碼與去除空白
func (d TransactionDraft) Normalize() TransactionDraft {
	d.Currency = NormalizeCurrency(string(d.Currency))
	d.TargetCurrency = NormalizeCurrency(string(d.TargetCurrency))
	d.SourceFundID = strings.TrimSpace(d.SourceFundID)
	d.TargetFundID = strings.TrimSpace(d.TargetFundID)
	return d
}
