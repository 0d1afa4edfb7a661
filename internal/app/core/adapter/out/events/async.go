package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
)

// DefaultAsyncBuffer 預設佇列長度
const DefaultAsyncBuffer = 1024

type asyncItem struct {
	ctx   context.Context
	event domain.LedgerEvent
}

// AsyncPublisher 把事件放進佇列，由單一 goroutine 依序交給底層 publisher
//
// Publish 不等待 broker；佇列滿時丟棄事件並記錄警告。
// 發布失敗只記錄，不回傳給呼叫端。
type AsyncPublisher struct {
	next   usecase.EventPublisher
	logger *slog.Logger
	queue  chan asyncItem
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncPublisher 建立並啟動 AsyncPublisher
//
// 參數:
//
//	next: 實際發布的 publisher
//	buffer: 佇列長度，<= 0 使用 DefaultAsyncBuffer
//	log: logger，nil 使用預設
//
// 回傳:
//
//	*AsyncPublisher: 實例，需呼叫 Close 排空佇列
func NewAsyncPublisher(next usecase.EventPublisher, buffer int, log *slog.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = DefaultAsyncBuffer
	}
	p := &AsyncPublisher{
		next:   next,
		logger: logger.Component(log, "events"),
		queue:  make(chan asyncItem, buffer),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for item := range p.queue {
		if err := p.next.Publish(item.ctx, item.event); err != nil {
			p.logger.WarnContext(item.ctx, "publish event failed",
				"event", string(item.event.Type), logger.FieldUserKey, item.event.UserKey.String(), logger.FieldError, err)
		}
	}
}

// Publish 事件入列後立即返回；關閉後的事件直接丟棄
func (p *AsyncPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil
	}

	// 請求結束後仍要送出
	item := asyncItem{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case p.queue <- item:
	default:
		p.logger.WarnContext(ctx, "event queue full, dropping event",
			"event", string(event.Type), logger.FieldUserKey, event.UserKey.String())
	}
	return nil
}

// Close 停止收件，等佇列送完後關閉底層 publisher
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.next.Close()
}

var _ usecase.EventPublisher = (*AsyncPublisher)(nil)
