package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
)

// MutexLedger 是一個使用 Mutex 實現的帳本
//
// 結構:
//
//	book: 帳本狀態 (交易、餘額、帳戶、分類...)
//	mu: 讀寫鎖，查詢使用 RLock，變更使用 Lock
type MutexLedger struct {
	book *book
	mu   sync.RWMutex
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	snapshot: 初始狀態 (通常是 domain.DefaultSnapshot 或由 SnapshotRepository 載入)
//	opts: 測試用的 ID 產生器 / 時鐘
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
func NewMutexLedger(snapshot domain.Snapshot, opts ...Option) *MutexLedger {
	return &MutexLedger{book: newBook(snapshot, opts...)}
}

// write 在寫鎖內執行變更
func (m *MutexLedger) write(ctx context.Context, fn func(b *book) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.book)
}

// read 在讀鎖內執行查詢
func (m *MutexLedger) read(ctx context.Context, fn func(b *book)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.book)
	return nil
}

// CreateTransaction 驗證並入帳
//
// 參數:
//
//	ctx: 上下文
//	draft: 交易草稿
//
// 回傳:
//
//	domain.Transaction: 已入帳的交易 (含產生的 ID)
//	error: 驗證錯誤，此時帳本不會有任何變動
func (m *MutexLedger) CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	var tx domain.Transaction
	err := m.write(ctx, func(b *book) (err error) {
		tx, err = b.create(draft)
		return err
	})
	return tx, err
}

func (m *MutexLedger) TrashTransaction(ctx context.Context, id string) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) error {
		changed = b.trash(id)
		return nil
	})
	return changed, err
}

func (m *MutexLedger) RestoreTransaction(ctx context.Context, id string) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) error {
		changed = b.restore(id)
		return nil
	})
	return changed, err
}

func (m *MutexLedger) PurgeTransaction(ctx context.Context, id string) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) error {
		changed = b.purge(id)
		return nil
	})
	return changed, err
}

func (m *MutexLedger) PurgeTrash(ctx context.Context) (int, error) {
	var n int
	err := m.write(ctx, func(b *book) error {
		n = b.purgeTrashed()
		return nil
	})
	return n, err
}

func (m *MutexLedger) AddFund(ctx context.Context, name string, currencies []domain.Currency) (domain.Fund, error) {
	var fund domain.Fund
	err := m.write(ctx, func(b *book) (err error) {
		fund, err = b.addFund(name, currencies)
		return err
	})
	return fund, err
}

func (m *MutexLedger) UpdateFund(ctx context.Context, id string, patch domain.FundPatch) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) (err error) {
		changed, err = b.updateFund(id, patch)
		return err
	})
	return changed, err
}

func (m *MutexLedger) DeleteFund(ctx context.Context, id string) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) error {
		changed = b.deleteFund(id)
		return nil
	})
	return changed, err
}

func (m *MutexLedger) AddCategory(ctx context.Context, name string, typ domain.TransactionType, icon string) (domain.Category, error) {
	var cat domain.Category
	err := m.write(ctx, func(b *book) (err error) {
		cat, err = b.addCategory(name, typ, icon)
		return err
	})
	return cat, err
}

func (m *MutexLedger) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) (err error) {
		changed, err = b.updateCategory(id, patch)
		return err
	})
	return changed, err
}

func (m *MutexLedger) DeleteCategory(ctx context.Context, id string) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) error {
		changed = b.deleteCategory(id)
		return nil
	})
	return changed, err
}

func (m *MutexLedger) AddCurrency(ctx context.Context, code string) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) error {
		changed = b.addCurrency(code)
		return nil
	})
	return changed, err
}

func (m *MutexLedger) RemoveCurrency(ctx context.Context, code string) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) error {
		changed = b.removeCurrency(code)
		return nil
	})
	return changed, err
}

func (m *MutexLedger) SetExchangeRate(ctx context.Context, code string, rate decimal.Decimal) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) (err error) {
		changed, err = b.setExchangeRate(code, rate)
		return err
	})
	return changed, err
}

func (m *MutexLedger) SetLanguage(ctx context.Context, language string) (bool, error) {
	var changed bool
	err := m.write(ctx, func(b *book) error {
		changed = b.setLanguage(language)
		return nil
	})
	return changed, err
}

func (m *MutexLedger) ImportBackup(ctx context.Context, backup domain.Backup) error {
	return m.write(ctx, func(b *book) error {
		b.importBackup(backup)
		return nil
	})
}

func (m *MutexLedger) Verify(ctx context.Context) ([]domain.Drift, error) {
	var drifts []domain.Drift
	err := m.read(ctx, func(b *book) { drifts = b.verify() })
	return drifts, err
}

func (m *MutexLedger) RebuildBalances(ctx context.Context) ([]domain.Drift, error) {
	var drifts []domain.Drift
	err := m.write(ctx, func(b *book) error {
		drifts = b.rebuild()
		return nil
	})
	return drifts, err
}

// GetFundBalance 取得指定帳戶、幣別的餘額
//
// 參數:
//
//	ctx: 上下文
//	fundID: 帳戶 ID
//	currency: 幣別
//
// 回傳:
//
//	decimal.Decimal: 餘額，餘額格不存在時為 0
//	error: ctx 已取消
func (m *MutexLedger) GetFundBalance(ctx context.Context, fundID string, currency domain.Currency) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := m.read(ctx, func(b *book) { amount = b.balance(fundID, currency) })
	return amount, err
}

func (m *MutexLedger) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var s domain.Snapshot
	err := m.read(ctx, func(b *book) { s = b.snapshot() })
	return s, err
}

func (m *MutexLedger) Reset(ctx context.Context, snapshot domain.Snapshot) error {
	return m.write(ctx, func(b *book) error {
		b.reset(snapshot)
		return nil
	})
}

var _ usecase.Ledger = (*MutexLedger)(nil)
