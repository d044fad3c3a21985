package adapters

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"stockimate/internal/feature/streaming/domain/entity"
	"stockimate/internal/feature/streaming/usecase"
)

// KafkaWriter is the subset of *kafka.Writer the sink needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTickSink はティックをKafkaトピックに記録します。送信失敗はログに残すだけで配信を止めません。
type KafkaTickSink struct {
	writer KafkaWriter
	log    *zap.Logger
}

var _ usecase.TickSink = (*KafkaTickSink)(nil)

// NewKafkaWriter はシンボルをキーとしてパーティションを固定する非同期Writerを生成します。
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
	}
}

func NewKafkaTickSink(writer KafkaWriter, log *zap.Logger) *KafkaTickSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaTickSink{writer: writer, log: log}
}

// Publish はティックをJSONにしてシンボルをキーに書き込みます。
func (s *KafkaTickSink) Publish(ctx context.Context, tick entity.Tick) {
	payload, err := json.Marshal(tick)
	if err != nil {
		s.log.Error("tick marshal failed", zap.Error(err))
		return
	}
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tick.Symbol),
		Value: payload,
	}); err != nil {
		s.log.Error("Kafka Write Error", zap.String("symbol", tick.Symbol), zap.Error(err))
	}
}

// Close flushes and closes the underlying writer.
func (s *KafkaTickSink) Close() error {
	return s.writer.Close()
}
