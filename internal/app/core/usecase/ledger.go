package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

// Ledger 是帳本核心的介面 (交易生命週期、餘額引擎與各項資料)
//
// 所有變更類方法在「沒有任何改變」時回傳 false / 0 且 error 為 nil
type Ledger interface {
	// CreateTransaction 驗證草稿、產生 ID、入帳
	CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error)
	// TrashTransaction 軟刪除並沖回餘額
	TrashTransaction(ctx context.Context, id string) (bool, error)
	// RestoreTransaction 從垃圾桶還原並重新入帳
	RestoreTransaction(ctx context.Context, id string) (bool, error)
	// PurgeTransaction 永久刪除；仍在使用中的交易會先沖回餘額
	PurgeTransaction(ctx context.Context, id string) (bool, error)
	// PurgeTrash 清空垃圾桶，回傳刪除筆數
	PurgeTrash(ctx context.Context) (int, error)

	AddFund(ctx context.Context, name string, currencies []domain.Currency) (domain.Fund, error)
	UpdateFund(ctx context.Context, id string, patch domain.FundPatch) (bool, error)
	DeleteFund(ctx context.Context, id string) (bool, error)

	AddCategory(ctx context.Context, name string, typ domain.TransactionType, icon string) (domain.Category, error)
	UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (bool, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)

	AddCurrency(ctx context.Context, code string) (bool, error)
	RemoveCurrency(ctx context.Context, code string) (bool, error)
	SetExchangeRate(ctx context.Context, code string, rate decimal.Decimal) (bool, error)
	SetLanguage(ctx context.Context, language string) (bool, error)

	// ImportBackup 以備份覆蓋存在的欄位
	ImportBackup(ctx context.Context, backup domain.Backup) error
	// Verify 比對儲存的餘額與由交易重算的餘額
	Verify(ctx context.Context) ([]domain.Drift, error)
	// RebuildBalances 以重算結果取代儲存的餘額，回傳修正前的差異
	RebuildBalances(ctx context.Context) ([]domain.Drift, error)

	// GetFundBalance 取得餘額格，不存在時為 0
	GetFundBalance(ctx context.Context, fundID string, currency domain.Currency) (decimal.Decimal, error)
	// Snapshot 取得目前狀態的深拷貝
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	// Reset 以指定快照取代整個帳本 (切換使用者)
	Reset(ctx context.Context, snapshot domain.Snapshot) error
}

// SnapshotRepository 持久化介面，以 UserKey 分區
type SnapshotRepository interface {
	// Load 讀取最後一次儲存的快照；found 為 false 代表此使用者尚無資料
	Load(ctx context.Context, key domain.UserKey) (snapshot domain.Snapshot, found bool, err error)
	// Save 覆寫此使用者的快照
	Save(ctx context.Context, key domain.UserKey, snapshot domain.Snapshot) error
}

// EventPublisher 帳本事件的對外發布介面
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
	Close() error
}
