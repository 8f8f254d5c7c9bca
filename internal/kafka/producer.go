package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

// MessageWriter is the subset of *kafka.Writer the publishers need.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter returns a writer for topic keyed by vehicle id, so each
// vehicle's messages stay on one partition.
func NewWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

// PublishTelemetry writes one message per sample.
func PublishTelemetry(ctx context.Context, w MessageWriter, samples []model.TelemetrySample) error {
	if len(samples) == 0 {
		return nil
	}
	records := make([]kafka.Message, len(samples))
	for i, s := range samples {
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal sample for %s: %w", s.Vehicle, err)
		}
		records[i] = kafka.Message{Key: []byte(s.Vehicle), Value: b, Time: s.Timestamp}
	}
	return w.WriteMessages(ctx, records...)
}

// PublishAlerts writes one message per collision alert.
func PublishAlerts(ctx context.Context, w MessageWriter, alerts []model.CollisionAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	records := make([]kafka.Message, len(alerts))
	for i, a := range alerts {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal alert for %s: %w", a.Vehicle, err)
		}
		records[i] = kafka.Message{Key: []byte(a.Vehicle), Value: b, Time: a.DetectedAt}
	}
	return w.WriteMessages(ctx, records...)
}
