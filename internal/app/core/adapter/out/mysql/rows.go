package mysql

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

// 金額與匯率欄位以字串保存，避免 DECIMAL(p,s) 截掉 amount*rate 的尾數
// decimal.Decimal 的 Value/Scan 本身就以字串讀寫

// sqlSettings 對應 ledger_settings 表，每個使用者一筆；存在與否代表是否有快照
type sqlSettings struct {
	UserKey             string `gorm:"primaryKey;size:191"`
	ExchangeRates       string `gorm:"type:text"` // JSON 物件
	AvailableCurrencies string `gorm:"size:255"`  // 逗號分隔
	Language            string `gorm:"size:16"`
	UpdatedAt           int64  `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlSettings) TableName() string { return "ledger_settings" }

// sqlFund 對應 ledger_funds 表
type sqlFund struct {
	UserKey             string `gorm:"primaryKey;size:191"`
	ID                  string `gorm:"primaryKey;size:64"`
	Position            int    `gorm:"index"`
	Name                string `gorm:"size:255"`
	SupportedCurrencies string `gorm:"size:255"`
	IsSystemDefault     bool
	IsCustom            bool
}

func (*sqlFund) TableName() string { return "ledger_funds" }

// sqlCategory 對應 ledger_categories 表
type sqlCategory struct {
	UserKey  string `gorm:"primaryKey;size:191"`
	ID       string `gorm:"primaryKey;size:64"`
	Position int    `gorm:"index"`
	Name     string `gorm:"size:255"`
	Type     string `gorm:"size:16"`
	Icon     string `gorm:"size:64"`
	IsCustom bool
}

func (*sqlCategory) TableName() string { return "ledger_categories" }

// sqlTransaction 對應 ledger_transactions 表；Position 0 為最新
type sqlTransaction struct {
	UserKey        string              `gorm:"primaryKey;size:191"`
	ID             string              `gorm:"primaryKey;size:64"`
	Position       int                 `gorm:"index"`
	Type           string              `gorm:"size:16"`
	Amount         decimal.Decimal     `gorm:"type:varchar(96)"`
	Currency       string              `gorm:"size:16"`
	CategoryID     string              `gorm:"size:64"`
	SourceFundID   string              `gorm:"size:64"`
	TargetFundID   string              `gorm:"size:64"`
	TargetCurrency string              `gorm:"size:16"`
	ExchangeRate   decimal.NullDecimal `gorm:"type:varchar(96)"`
	Date           string              `gorm:"size:10;index"`
	Note           string              `gorm:"type:text"`
	ProofImage     string              `gorm:"type:longtext"`
	IsCommitment   bool
	IsDeleted      bool `gorm:"index"`
	DeletedAt      *time.Time
}

func (*sqlTransaction) TableName() string { return "ledger_transactions" }

// sqlBalance 對應 ledger_balances 表
type sqlBalance struct {
	UserKey  string          `gorm:"primaryKey;size:191"`
	FundID   string          `gorm:"primaryKey;size:64"`
	Currency string          `gorm:"primaryKey;size:16"`
	Position int             `gorm:"index"`
	Amount   decimal.Decimal `gorm:"type:varchar(96)"`
}

func (*sqlBalance) TableName() string { return "ledger_balances" }

// models AutoMigrate 的所有表
func models() []any {
	return []any{&sqlSettings{}, &sqlFund{}, &sqlCategory{}, &sqlTransaction{}, &sqlBalance{}}
}

// snapshotRows 一份快照拆成的資料列
type snapshotRows struct {
	settings     sqlSettings
	funds        []sqlFund
	categories   []sqlCategory
	transactions []sqlTransaction
	balances     []sqlBalance
}

func joinCurrencies(list []domain.Currency) string {
	parts := make([]string, 0, len(list))
	for _, c := range list {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ",")
}

func splitCurrencies(s string) []domain.Currency {
	out := make([]domain.Currency, 0)
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, ",") {
		out = append(out, domain.Currency(part))
	}
	return out
}

// toRows 快照 -> 資料列
func toRows(key domain.UserKey, s domain.Snapshot) (snapshotRows, error) {
	userKey := key.String()
	rates, err := json.Marshal(s.ExchangeRates)
	if err != nil {
		return snapshotRows{}, fmt.Errorf("encode exchange rates: %w", err)
	}
	rows := snapshotRows{
		settings: sqlSettings{
			UserKey:             userKey,
			ExchangeRates:       string(rates),
			AvailableCurrencies: joinCurrencies(s.AvailableCurrencies),
			Language:            s.Language,
		},
		funds:        make([]sqlFund, 0, len(s.Funds)),
		categories:   make([]sqlCategory, 0, len(s.Categories)),
		transactions: make([]sqlTransaction, 0, len(s.Transactions)),
		balances:     make([]sqlBalance, 0, len(s.Balances)),
	}
	for i, f := range s.Funds {
		rows.funds = append(rows.funds, sqlFund{
			UserKey: userKey, ID: f.ID, Position: i, Name: f.Name,
			SupportedCurrencies: joinCurrencies(f.SupportedCurrencies),
			IsSystemDefault:     f.IsSystemDefault, IsCustom: f.IsCustom,
		})
	}
	for i, c := range s.Categories {
		rows.categories = append(rows.categories, sqlCategory{
			UserKey: userKey, ID: c.ID, Position: i, Name: c.Name, Type: string(c.Type), Icon: c.Icon, IsCustom: c.IsCustom,
		})
	}
	for i, tx := range s.Transactions {
		row := sqlTransaction{
			UserKey: userKey, ID: tx.ID, Position: i, Type: string(tx.Type), Amount: tx.Amount,
			Currency: string(tx.Currency), CategoryID: tx.CategoryID, SourceFundID: tx.SourceFundID,
			TargetFundID: tx.TargetFundID, TargetCurrency: string(tx.TargetCurrency), Date: tx.Date.String(),
			Note: tx.Note, ProofImage: tx.ProofImage, IsCommitment: tx.IsCommitment, IsDeleted: tx.IsDeleted,
			DeletedAt: tx.DeletedAt,
		}
		if tx.ExchangeRate != nil {
			row.ExchangeRate = decimal.NewNullDecimal(*tx.ExchangeRate)
		}
		rows.transactions = append(rows.transactions, row)
	}
	for i, b := range s.Balances {
		rows.balances = append(rows.balances, sqlBalance{
			UserKey: userKey, FundID: b.FundID, Currency: string(b.Currency), Position: i, Amount: b.Amount,
		})
	}
	return rows, nil
}

// fromRows 資料列 -> 快照；各 slice 需已依 Position 排序
func fromRows(rows snapshotRows) (domain.Snapshot, error) {
	s := domain.Snapshot{
		Funds:               make([]domain.Fund, 0, len(rows.funds)),
		Categories:          make([]domain.Category, 0, len(rows.categories)),
		Transactions:        make([]domain.Transaction, 0, len(rows.transactions)),
		Balances:            make([]domain.Balance, 0, len(rows.balances)),
		ExchangeRates:       domain.ExchangeRates{},
		AvailableCurrencies: splitCurrencies(rows.settings.AvailableCurrencies),
		Language:            rows.settings.Language,
	}
	if rows.settings.ExchangeRates != "" {
		if err := json.Unmarshal([]byte(rows.settings.ExchangeRates), &s.ExchangeRates); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode exchange rates: %w", err)
		}
	}
	for _, f := range rows.funds {
		s.Funds = append(s.Funds, domain.Fund{
			ID: f.ID, Name: f.Name, SupportedCurrencies: splitCurrencies(f.SupportedCurrencies),
			IsSystemDefault: f.IsSystemDefault, IsCustom: f.IsCustom,
		})
	}
	for _, c := range rows.categories {
		s.Categories = append(s.Categories, domain.Category{
			ID: c.ID, Name: c.Name, Type: domain.TransactionType(c.Type), Icon: c.Icon, IsCustom: c.IsCustom,
		})
	}
	for _, row := range rows.transactions {
		var date domain.Date
		if row.Date != "" {
			d, err := domain.ParseDate(row.Date)
			if err != nil {
				return domain.Snapshot{}, fmt.Errorf("transaction %s: %w", row.ID, err)
			}
			date = d
		}
		tx := domain.Transaction{
			ID: row.ID, Type: domain.TransactionType(row.Type), Amount: row.Amount, Currency: domain.Currency(row.Currency),
			CategoryID: row.CategoryID, SourceFundID: row.SourceFundID, TargetFundID: row.TargetFundID,
			TargetCurrency: domain.Currency(row.TargetCurrency), Date: date, Note: row.Note, ProofImage: row.ProofImage,
			IsCommitment: row.IsCommitment, IsDeleted: row.IsDeleted, DeletedAt: row.DeletedAt,
		}
		if row.ExchangeRate.Valid {
			rate := row.ExchangeRate.Decimal
			tx.ExchangeRate = &rate
		}
		s.Transactions = append(s.Transactions, tx)
	}
	for _, b := range rows.balances {
		s.Balances = append(s.Balances, domain.Balance{FundID: b.FundID, Currency: domain.Currency(b.Currency), Amount: b.Amount})
	}
	return s, nil
}
