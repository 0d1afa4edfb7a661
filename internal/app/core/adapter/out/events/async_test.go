package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
)

// gatedPublisher 在 gate 關閉前卡住每次 Publish，模擬斷線的 broker
type gatedPublisher struct {
	gate chan struct{}

	mu     sync.Mutex
	got    []domain.EventType
	ctxErr []error
	closed bool
}

func (p *gatedPublisher) Publish(ctx context.Context, e domain.LedgerEvent) error {
	<-p.gate
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e.Type)
	p.ctxErr = append(p.ctxErr, ctx.Err())
	return errors.New("broker unavailable")
}

func (p *gatedPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func TestAsyncPublisherDoesNotWaitForBroker(t *testing.T) {
	inner := &gatedPublisher{gate: make(chan struct{})}
	p := NewAsyncPublisher(inner, 4, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		for _, typ := range []domain.EventType{domain.EventTransactionCreated, domain.EventTransactionTrashed} {
			e := event
			e.Type = typ
			assert.NoError(t, p.Publish(ctx, e))
		}
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stalled broker")
	}
	// 請求結束不影響已入列的事件
	cancel()

	close(inner.gate)
	require.NoError(t, p.Close())

	assert.Equal(t, []domain.EventType{domain.EventTransactionCreated, domain.EventTransactionTrashed}, inner.got)
	assert.Equal(t, []error{nil, nil}, inner.ctxErr)
	assert.True(t, inner.closed)
}

func TestAsyncPublisherDropsWhenFull(t *testing.T) {
	inner := &gatedPublisher{gate: make(chan struct{})}
	p := NewAsyncPublisher(inner, 1, logger.Discard())

	// 第一筆被 worker 取走卡在 gate，第二筆佔滿佇列，之後的全部丟棄
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Publish(context.Background(), event))
	}
	close(inner.gate)
	require.NoError(t, p.Close())

	assert.GreaterOrEqual(t, len(inner.got), 1)
	assert.LessOrEqual(t, len(inner.got), 2)

	// 關閉後不再送出
	require.NoError(t, p.Publish(context.Background(), event))
	require.NoError(t, p.Close())
	assert.LessOrEqual(t, len(inner.got), 2)
}
