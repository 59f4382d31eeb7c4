package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"orion-collector/internal/config"
	"orion-collector/internal/domain"
)

// Writer produces loop records to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic. Records are
// keyed by measurement group so each group's records stay ordered on one
// partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one loop record and writes it to the topic.
func (w *Writer) Publish(ctx context.Context, rec domain.OutputRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a loop record into a Kafka message.
func serializeToMessage(rec domain.OutputRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize loop record: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "group", Value: []byte(rec.Class)},
		{Key: "observed_at", Value: []byte(strconv.FormatInt(rec.Timestamp, 10))},
	}
	if rec.UnitsResolved {
		headers = append(headers, kafkago.Header{Key: "units", Value: []byte(rec.UnitSystem.String())})
	}
	return kafkago.Message{
		Key:     []byte(rec.Class),
		Value:   data,
		Headers: headers,
	}, nil
}
