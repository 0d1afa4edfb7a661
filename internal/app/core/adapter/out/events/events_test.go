package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

type published struct {
	exchange, key string
	msg           amqp091.Publishing
}

type fakeChannel struct {
	sent   []published
	closed bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.sent = append(c.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

var event = domain.LedgerEvent{
	Type:          domain.EventTransactionTrashed,
	UserKey:       domain.NewUserKey("a@b.c"),
	TransactionID: "tx-1",
	OccurredAt:    time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC),
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "user:a@b.c", string(w.msgs[0].Key))
	assert.Equal(t, "transaction.trashed", string(w.msgs[0].Headers[0].Value))

	var got domain.LedgerEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, event, got)

	w.err = errors.New("leader not available")
	assert.ErrorContains(t, p.Publish(context.Background(), event), "leader not available")
}

func TestAMQPPublisher(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "fund_ledger"}

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, ch.sent, 1)
	assert.Equal(t, "fund_ledger", ch.sent[0].exchange)
	assert.Equal(t, "transaction.trashed", ch.sent[0].key)
	assert.Equal(t, ContentType, ch.sent[0].msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.sent[0].msg.DeliveryMode)
	assert.JSONEq(t, `{"type":"transaction.trashed","userKey":"user:a@b.c","transactionId":"tx-1","occurredAt":"2024-01-02T03:04:05Z"}`, string(ch.sent[0].msg.Body))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNewKafkaPublisherDefaultTopic(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "")
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultKafkaTopic, w.Topic)
	assert.False(t, w.Async)
	assert.Equal(t, kafkaBatchTimeout, w.BatchTimeout)
	assert.Equal(t, kafkaMaxAttempts, w.MaxAttempts)
}
