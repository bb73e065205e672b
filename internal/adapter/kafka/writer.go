package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/gampnico/scintillometry-tools/internal/config"
	"github.com/gampnico/scintillometry-tools/internal/domain"
)

// Writer produces messages to a Kafka topic.
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
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple flux estimates to the sink
// Kafka topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, estimates []domain.FluxEstimate) error {
	if len(estimates) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(estimates))
	for i := range estimates {
		msg, err := serializeToMessage(estimates[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FluxEstimate into a Kafka message keyed by
// the deterministic estimate ID.
func serializeToMessage(estimate domain.FluxEstimate) (kafkago.Message, error) {
	data, err := json.Marshal(estimate)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize flux estimate: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(estimate.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station_code", Value: []byte(estimate.Station)},
			{Key: "processed_at", Value: []byte(estimate.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
