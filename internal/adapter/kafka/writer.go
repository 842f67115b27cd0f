package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/zip-dispatch/internal/config"
	"github.com/couchcryptid/zip-dispatch/internal/domain"
)

// Writer publishes compiled scheme tables to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchBytes:   maxSchemeBytes,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes every compiled scheme in a single WriteMessages call.
// Schemes are keyed by name so revisions of one scheme stay ordered.
func (w *Writer) LoadBatch(ctx context.Context, schemes []domain.CompiledScheme) error {
	if len(schemes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(schemes))
	for i := range schemes {
		msg, err := serializeToMessage(schemes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish compiled schemes: %w", err)
	}
	w.logger.Debug("compiled schemes published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage renders a compiled scheme as its table CSV.
func serializeToMessage(scheme domain.CompiledScheme) (kafkago.Message, error) {
	table, err := domain.EncodeTable(scheme.Records)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize scheme %q: %w", scheme.Name, err)
	}
	return kafkago.Message{
		Key:   []byte(scheme.Name),
		Value: table,
		Headers: []kafkago.Header{
			{Key: "rows", Value: []byte(strconv.Itoa(scheme.Manifest.Rows))},
			{Key: "built", Value: []byte(scheme.Manifest.Built.Format(time.RFC3339))},
		},
	}, nil
}
