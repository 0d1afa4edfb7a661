package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
)

// CommandResult 變更類指令的結果
type CommandResult struct {
	// Changed 為 false 代表指令沒有造成任何改變 (e.g. 重複丟入垃圾桶)
	Changed bool
	// Snapshot 指令執行後的帳本狀態；變更後取快照失敗時為零值
	Snapshot domain.Snapshot
}

// ChangeHook 每次成功變更後被呼叫
type ChangeHook func(ctx context.Context, key domain.UserKey, snapshot domain.Snapshot)

// Option CoreUseCase 的可選依賴
type Option func(*CoreUseCase)

// WithRepository 指定快照儲存
func WithRepository(repo SnapshotRepository) Option {
	return func(c *CoreUseCase) { c.repo = repo }
}

// WithPublisher 指定事件發布
func WithPublisher(p EventPublisher) Option {
	return func(c *CoreUseCase) { c.publisher = p }
}

// WithOnChange 加入變更後的 hook
func WithOnChange(hook ChangeHook) Option {
	return func(c *CoreUseCase) { c.hooks = append(c.hooks, hook) }
}

// WithLogger 指定 logger
func WithLogger(l *slog.Logger) Option {
	return func(c *CoreUseCase) { c.logger = logger.Component(l, "core") }
}

// WithClock 指定時鐘 (事件時間與匯出時間)
func WithClock(now func() time.Time) Option {
	return func(c *CoreUseCase) { c.now = now }
}

// CoreUseCase 是核心業務邏輯層
//
// 每個變更指令: Ledger 變更 -> 取快照 -> SnapshotRepository.Save -> hooks -> EventPublisher
type CoreUseCase struct {
	ledger    Ledger
	repo      SnapshotRepository
	publisher EventPublisher
	hooks     []ChangeHook
	logger    *slog.Logger
	now       func() time.Time

	// userMu 切換使用者時獨佔，一般指令共用
	userMu  sync.RWMutex
	userKey domain.UserKey
	// commitMu 讓快照與儲存依序發生，存下去的快照只會越來越新
	commitMu sync.Mutex
}

// NewCoreUseCase 建立 CoreUseCase，目前使用者為訪客
//
// 參數:
//
//	ledger: 帳本實作 (MutexLedger / LMAXLedger)
//	opts: 可選依賴
//
// 回傳:
//
//	*CoreUseCase: 實例
func NewCoreUseCase(ledger Ledger, opts ...Option) *CoreUseCase {
	c := &CoreUseCase{
		ledger:  ledger,
		logger:  logger.Component(nil, "core"),
		now:     time.Now,
		userKey: domain.GuestKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser 目前帳本所屬的使用者
func (c *CoreUseCase) CurrentUser() domain.UserKey {
	c.userMu.RLock()
	defer c.userMu.RUnlock()
	return c.userKey
}

// SwitchUser 載入指定使用者的快照 (沒有資料時使用預設值) 並取代目前帳本
//
// 參數:
//
//	ctx: 上下文
//	identity: 使用者身分，空字串為訪客
//
// 回傳:
//
//	domain.Snapshot: 載入後的狀態
//	error: 讀取或重設錯誤，此時目前使用者不變
func (c *CoreUseCase) SwitchUser(ctx context.Context, identity string) (domain.Snapshot, error) {
	key := domain.NewUserKey(identity)

	c.userMu.Lock()
	defer c.userMu.Unlock()

	snapshot := domain.DefaultSnapshot()
	if c.repo != nil {
		loaded, found, err := c.repo.Load(ctx, key)
		if err != nil {
			return domain.Snapshot{}, err
		}
		if found {
			snapshot = loaded
		}
	}
	if err := c.ledger.Reset(ctx, snapshot); err != nil {
		return domain.Snapshot{}, err
	}
	c.userKey = key
	c.logger.InfoContext(ctx, "user switched", logger.FieldUserKey, key.String())
	return snapshot.Clone(), nil
}

// mutate 在使用者讀鎖內執行變更並提交
func (c *CoreUseCase) mutate(ctx context.Context, event *domain.LedgerEvent, fn func() (bool, error)) (CommandResult, error) {
	c.userMu.RLock()
	defer c.userMu.RUnlock()

	changed, err := fn()
	if err != nil {
		return CommandResult{}, err
	}
	return c.commit(ctx, changed, *event)
}

// commit 取快照並執行所有副作用；取快照、持久化與發布失敗只記錄，不影響記憶體狀態
func (c *CoreUseCase) commit(ctx context.Context, changed bool, event domain.LedgerEvent) (CommandResult, error) {
	if !changed {
		snapshot, err := c.ledger.Snapshot(ctx)
		return CommandResult{Snapshot: snapshot}, err
	}

	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	key := c.userKey
	// 變更已生效；取不到快照時只略過儲存與 hooks
	snapshot, err := c.ledger.Snapshot(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "snapshot after change failed",
			"event", string(event.Type), logger.FieldUserKey, key.String(), logger.FieldError, err)
	} else {
		if c.repo != nil {
			if err := c.repo.Save(ctx, key, snapshot); err != nil {
				c.logger.ErrorContext(ctx, "save snapshot failed",
					logger.FieldUserKey, key.String(), logger.FieldError, err)
			}
		}
		for _, hook := range c.hooks {
			hook(ctx, key, snapshot.Clone())
		}
	}
	if c.publisher != nil {
		event.UserKey = key
		event.OccurredAt = c.now().UTC()
		if err := c.publisher.Publish(ctx, event); err != nil {
			c.logger.WarnContext(ctx, "publish event failed",
				"event", string(event.Type), logger.FieldUserKey, key.String(), logger.FieldError, err)
		}
	}
	return CommandResult{Changed: true, Snapshot: snapshot}, nil
}

// ---------------------------------------------------------------------------
// 交易

// CreateTransaction 建立交易
//
// 參數:
//
//	ctx: 上下文
//	draft: 交易草稿
//
// 回傳:
//
//	domain.Transaction: 已入帳的交易
//	CommandResult: 執行後的狀態
//	error: 驗證錯誤 (domain.IsValidation 為 true)
func (c *CoreUseCase) CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, CommandResult, error) {
	var tx domain.Transaction
	event := &domain.LedgerEvent{Type: domain.EventTransactionCreated}
	res, err := c.mutate(ctx, event, func() (bool, error) {
		var err error
		tx, err = c.ledger.CreateTransaction(ctx, draft)
		event.TransactionID = tx.ID
		return err == nil, err
	})
	if err != nil {
		return domain.Transaction{}, CommandResult{}, err
	}
	return tx, res, nil
}

func (c *CoreUseCase) TrashTransaction(ctx context.Context, id string) (CommandResult, error) {
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventTransactionTrashed, TransactionID: id}, func() (bool, error) {
		return c.ledger.TrashTransaction(ctx, id)
	})
}

func (c *CoreUseCase) RestoreTransaction(ctx context.Context, id string) (CommandResult, error) {
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventTransactionRestored, TransactionID: id}, func() (bool, error) {
		return c.ledger.RestoreTransaction(ctx, id)
	})
}

func (c *CoreUseCase) PurgeTransaction(ctx context.Context, id string) (CommandResult, error) {
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventTransactionPurged, TransactionID: id}, func() (bool, error) {
		return c.ledger.PurgeTransaction(ctx, id)
	})
}

// PurgeTrash 清空垃圾桶，回傳刪除筆數
func (c *CoreUseCase) PurgeTrash(ctx context.Context) (int, CommandResult, error) {
	var n int
	res, err := c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventTrashPurged}, func() (bool, error) {
		var err error
		n, err = c.ledger.PurgeTrash(ctx)
		return n > 0, err
	})
	return n, res, err
}

// ---------------------------------------------------------------------------
// 帳戶、分類

func (c *CoreUseCase) AddFund(ctx context.Context, name string, currencies []domain.Currency) (domain.Fund, CommandResult, error) {
	var fund domain.Fund
	event := &domain.LedgerEvent{Type: domain.EventFundAdded}
	res, err := c.mutate(ctx, event, func() (bool, error) {
		var err error
		fund, err = c.ledger.AddFund(ctx, name, currencies)
		event.EntityID = fund.ID
		return err == nil, err
	})
	return fund, res, err
}

func (c *CoreUseCase) UpdateFund(ctx context.Context, id string, patch domain.FundPatch) (CommandResult, error) {
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventFundUpdated, EntityID: id}, func() (bool, error) {
		return c.ledger.UpdateFund(ctx, id, patch)
	})
}

// DeleteFund 預設帳戶不可刪除，此時 Changed 為 false
func (c *CoreUseCase) DeleteFund(ctx context.Context, id string) (CommandResult, error) {
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventFundDeleted, EntityID: id}, func() (bool, error) {
		return c.ledger.DeleteFund(ctx, id)
	})
}

func (c *CoreUseCase) AddCategory(ctx context.Context, name string, typ domain.TransactionType, icon string) (domain.Category, CommandResult, error) {
	var cat domain.Category
	event := &domain.LedgerEvent{Type: domain.EventCategoryAdded}
	res, err := c.mutate(ctx, event, func() (bool, error) {
		var err error
		cat, err = c.ledger.AddCategory(ctx, name, typ, icon)
		event.EntityID = cat.ID
		return err == nil, err
	})
	return cat, res, err
}

func (c *CoreUseCase) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (CommandResult, error) {
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventCategoryUpdated, EntityID: id}, func() (bool, error) {
		return c.ledger.UpdateCategory(ctx, id, patch)
	})
}

func (c *CoreUseCase) DeleteCategory(ctx context.Context, id string) (CommandResult, error) {
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventCategoryDeleted, EntityID: id}, func() (bool, error) {
		return c.ledger.DeleteCategory(ctx, id)
	})
}

// ---------------------------------------------------------------------------
// 幣別、匯率、語系

func (c *CoreUseCase) AddCurrency(ctx context.Context, code string) (CommandResult, error) {
	event := &domain.LedgerEvent{Type: domain.EventCurrencyAdded, EntityID: domain.NormalizeCurrency(code).String()}
	return c.mutate(ctx, event, func() (bool, error) {
		return c.ledger.AddCurrency(ctx, code)
	})
}

func (c *CoreUseCase) RemoveCurrency(ctx context.Context, code string) (CommandResult, error) {
	event := &domain.LedgerEvent{Type: domain.EventCurrencyRemoved, EntityID: domain.NormalizeCurrency(code).String()}
	return c.mutate(ctx, event, func() (bool, error) {
		return c.ledger.RemoveCurrency(ctx, code)
	})
}

func (c *CoreUseCase) SetExchangeRate(ctx context.Context, code string, rate decimal.Decimal) (CommandResult, error) {
	event := &domain.LedgerEvent{Type: domain.EventExchangeRateSet, EntityID: domain.NormalizeCurrency(code).String()}
	return c.mutate(ctx, event, func() (bool, error) {
		return c.ledger.SetExchangeRate(ctx, code, rate)
	})
}

func (c *CoreUseCase) SetLanguage(ctx context.Context, language string) (CommandResult, error) {
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventLanguageSet, EntityID: language}, func() (bool, error) {
		return c.ledger.SetLanguage(ctx, language)
	})
}

// ---------------------------------------------------------------------------
// 備份、驗證

// ImportBackup 解析並匯入備份；格式錯誤時回傳 domain.ErrInvalidBackup，帳本維持原狀
func (c *CoreUseCase) ImportBackup(ctx context.Context, data []byte) (CommandResult, error) {
	backup, err := domain.DecodeBackup(data)
	if err != nil {
		return CommandResult{}, err
	}
	return c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventBackupImported}, func() (bool, error) {
		return true, c.ledger.ImportBackup(ctx, backup)
	})
}

// ExportBackup 匯出目前狀態 (版本 1.2)
func (c *CoreUseCase) ExportBackup(ctx context.Context) ([]byte, error) {
	snapshot, err := c.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return domain.EncodeBackup(domain.NewBackup(snapshot, c.now()))
}

// Verify 檢查餘額是否與交易一致
func (c *CoreUseCase) Verify(ctx context.Context) ([]domain.Drift, error) {
	return c.ledger.Verify(ctx)
}

// RebuildBalances 依交易重算餘額，回傳修正前的差異
func (c *CoreUseCase) RebuildBalances(ctx context.Context) ([]domain.Drift, CommandResult, error) {
	var drifts []domain.Drift
	res, err := c.mutate(ctx, &domain.LedgerEvent{Type: domain.EventBalancesRebuilt}, func() (bool, error) {
		var err error
		drifts, err = c.ledger.RebuildBalances(ctx)
		return len(drifts) > 0, err
	})
	return drifts, res, err
}

// ---------------------------------------------------------------------------
// 查詢

func (c *CoreUseCase) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return c.ledger.Snapshot(ctx)
}

// GetFundBalance 取得餘額格，不存在時為 0
func (c *CoreUseCase) GetFundBalance(ctx context.Context, fundID string, currency domain.Currency) (decimal.Decimal, error) {
	return c.ledger.GetFundBalance(ctx, fundID, domain.NormalizeCurrency(string(currency)))
}
