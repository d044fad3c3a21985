package di

import (
	"io"

	"go.uber.org/zap"

	streamadapters "stockimate/internal/feature/streaming/adapters"
	streamusecase "stockimate/internal/feature/streaming/usecase"
	"stockimate/internal/platform/config"
	"stockimate/internal/platform/externalapi/finnhub"
)

// NewMultiplexer creates the upstream trade feed multiplexer. When Kafka is
// enabled every tick is also archived; the returned closer flushes the writer
// and is nil otherwise.
func NewMultiplexer(cfg *config.Config, log *zap.Logger) (*streamusecase.Multiplexer, io.Closer) {
	opts := []streamusecase.Option{
		streamusecase.WithMaxReconnectAttempts(cfg.Stream.MaxReconnectAttempts),
	}

	var closer io.Closer
	if cfg.Kafka.Enabled {
		writer := streamadapters.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sink := streamadapters.NewKafkaTickSink(writer, log.Named("kafka"))
		opts = append(opts, streamusecase.WithTickSink(sink))
		closer = sink
	}

	dialer := streamadapters.NewWSDialer(finnhub.ConfigFrom(cfg.Finnhub).StreamURL())
	return streamusecase.NewMultiplexer(dialer, log.Named("stream"), opts...), closer
}
