package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
)

// DefaultQueueSize 輸送帶預設緩衝大小
const DefaultQueueSize = 1000

// command 包裝一次對帳本的操作，讓呼叫端可以等待結果
type command struct {
	fn     func(b *book) error
	Result chan error // 呼叫端等這個 channel
}

// LMAXLedger 單一 goroutine 擁有帳本狀態，所有讀寫都經由輸送帶依序執行
type LMAXLedger struct {
	book *book
	// 輸送帶 負責接收操作
	commandChan chan *command
	// Pool 減少 GC 壓力
	commandPool sync.Pool
	// finished 核心迴圈結束後關閉
	finished  chan struct{}
	startOnce sync.Once
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例，需呼叫 Start 才會開始處理
//
// 參數:
//
//	snapshot: 初始狀態
//	queueSize: 輸送帶緩衝大小，<= 0 時使用 DefaultQueueSize
//	opts: 測試用的 ID 產生器 / 時鐘
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例
func NewLMAXLedger(snapshot domain.Snapshot, queueSize int, opts ...Option) *LMAXLedger {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &LMAXLedger{
		book:        newBook(snapshot, opts...),
		commandChan: make(chan *command, queueSize),
		finished:    make(chan struct{}),
		commandPool: sync.Pool{
			New: func() interface{} {
				return &command{Result: make(chan error, 1)}
			},
		},
	}
}

// Start 啟動核心引擎 (非同步)；ctx 取消後處理完輸送帶上剩下的操作才結束
func (l *LMAXLedger) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.run(ctx)
	})
}

// Done 核心迴圈結束後關閉
func (l *LMAXLedger) Done() <-chan struct{} { return l.finished }

func (l *LMAXLedger) run(ctx context.Context) {
	defer close(l.finished)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的操作處理完
			l.drain()
			return
		case cmd := <-l.commandChan:
			l.process(cmd)
		}
	}
}

func (l *LMAXLedger) drain() {
	for {
		select {
		case cmd := <-l.commandChan:
			l.process(cmd)
		default:
			return
		}
	}
}

func (l *LMAXLedger) process(cmd *command) {
	cmd.Result <- cmd.fn(l.book)
}

// submit 放入輸送帶並等待結果
//
// Submit(等待) -> Channel -> Run Loop (核心) -> book -> Result Channel -> Submit(收到結果)
func (l *LMAXLedger) submit(ctx context.Context, fn func(b *book) error) error {
	// 1. 放入輸送帶 (使用 sync.Pool 減少 GC)
	cmd := l.commandPool.Get().(*command)
	cmd.fn = fn
	select {
	case <-cmd.Result:
	default:
	}

	select {
	case l.commandChan <- cmd:
	case <-l.finished:
		return domain.ErrLedgerStopped
	case <-ctx.Done():
		l.commandPool.Put(cmd)
		return ctx.Err()
	}

	// 2. 已進入輸送帶的操作一定會被執行，不因 ctx 取消而放棄等待
	select {
	case err := <-cmd.Result:
		cmd.fn = nil
		l.commandPool.Put(cmd)
		return err
	case <-l.finished:
		// 迴圈結束前可能已經處理完
		select {
		case err := <-cmd.Result:
			return err
		default:
			return domain.ErrLedgerStopped
		}
	}
}

// call 封裝有回傳值的操作
func call[T any](ctx context.Context, l *LMAXLedger, fn func(b *book) (T, error)) (T, error) {
	var out T
	err := l.submit(ctx, func(b *book) (err error) {
		out, err = fn(b)
		return err
	})
	return out, err
}

// CreateTransaction 驗證並入帳
func (l *LMAXLedger) CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	return call(ctx, l, func(b *book) (domain.Transaction, error) { return b.create(draft) })
}

func (l *LMAXLedger) TrashTransaction(ctx context.Context, id string) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.trash(id), nil })
}

func (l *LMAXLedger) RestoreTransaction(ctx context.Context, id string) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.restore(id), nil })
}

func (l *LMAXLedger) PurgeTransaction(ctx context.Context, id string) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.purge(id), nil })
}

func (l *LMAXLedger) PurgeTrash(ctx context.Context) (int, error) {
	return call(ctx, l, func(b *book) (int, error) { return b.purgeTrashed(), nil })
}

func (l *LMAXLedger) AddFund(ctx context.Context, name string, currencies []domain.Currency) (domain.Fund, error) {
	return call(ctx, l, func(b *book) (domain.Fund, error) { return b.addFund(name, currencies) })
}

func (l *LMAXLedger) UpdateFund(ctx context.Context, id string, patch domain.FundPatch) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.updateFund(id, patch) })
}

func (l *LMAXLedger) DeleteFund(ctx context.Context, id string) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.deleteFund(id), nil })
}

func (l *LMAXLedger) AddCategory(ctx context.Context, name string, typ domain.TransactionType, icon string) (domain.Category, error) {
	return call(ctx, l, func(b *book) (domain.Category, error) { return b.addCategory(name, typ, icon) })
}

func (l *LMAXLedger) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.updateCategory(id, patch) })
}

func (l *LMAXLedger) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.deleteCategory(id), nil })
}

func (l *LMAXLedger) AddCurrency(ctx context.Context, code string) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.addCurrency(code), nil })
}

func (l *LMAXLedger) RemoveCurrency(ctx context.Context, code string) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.removeCurrency(code), nil })
}

func (l *LMAXLedger) SetExchangeRate(ctx context.Context, code string, rate decimal.Decimal) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.setExchangeRate(code, rate) })
}

func (l *LMAXLedger) SetLanguage(ctx context.Context, language string) (bool, error) {
	return call(ctx, l, func(b *book) (bool, error) { return b.setLanguage(language), nil })
}

func (l *LMAXLedger) ImportBackup(ctx context.Context, backup domain.Backup) error {
	return l.submit(ctx, func(b *book) error {
		b.importBackup(backup)
		return nil
	})
}

func (l *LMAXLedger) Verify(ctx context.Context) ([]domain.Drift, error) {
	return call(ctx, l, func(b *book) ([]domain.Drift, error) { return b.verify(), nil })
}

func (l *LMAXLedger) RebuildBalances(ctx context.Context) ([]domain.Drift, error) {
	return call(ctx, l, func(b *book) ([]domain.Drift, error) { return b.rebuild(), nil })
}

// GetFundBalance 查詢也經過輸送帶，保證讀到先前送出的變更
func (l *LMAXLedger) GetFundBalance(ctx context.Context, fundID string, currency domain.Currency) (decimal.Decimal, error) {
	return call(ctx, l, func(b *book) (decimal.Decimal, error) { return b.balance(fundID, currency), nil })
}

func (l *LMAXLedger) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return call(ctx, l, func(b *book) (domain.Snapshot, error) { return b.snapshot(), nil })
}

func (l *LMAXLedger) Reset(ctx context.Context, snapshot domain.Snapshot) error {
	return l.submit(ctx, func(b *book) error {
		b.reset(snapshot)
		return nil
	})
}

var _ usecase.Ledger = (*LMAXLedger)(nil)
