package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-fund-ledger/internal/app/core/usecase"
)

// DefaultKafkaTopic 預設 topic
const DefaultKafkaTopic = "fund_ledger_events"

const (
	// kafkaBatchTimeout 每筆事件都是單獨寫入，不等湊批次
	kafkaBatchTimeout = 10 * time.Millisecond
	kafkaMaxAttempts  = 3
	kafkaWriteTimeout = 5 * time.Second
)

// messageWriter kafka.Writer 的子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 將帳本事件寫到 Kafka
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher 建立 publisher
//
// 參數:
//
//	brokers: broker 位址
//	topic: 目標 topic，空字串使用 DefaultKafkaTopic
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           kafkaBatchTimeout,
			MaxAttempts:            kafkaMaxAttempts,
			WriteTimeout:           kafkaWriteTimeout,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	key, body, err := encode(event)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "content_type", Value: []byte(ContentType)},
		},
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ usecase.EventPublisher = (*KafkaPublisher)(nil)
