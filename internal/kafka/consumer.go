package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/geo"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

var (
	ErrMissingVehicle    = errors.New("telemetry: missing vehicle id")
	ErrInvalidCoordinate = errors.New("telemetry: coordinate out of range")
)

// MessageReader is the subset of *kafka.Reader the consumers need.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// NewReader returns a consumer group reader starting from the oldest
// uncommitted message.
func NewReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:         []string{broker},
		Topic:           topic,
		GroupID:         groupID,
		MinBytes:        10e3,
		MaxBytes:        10e6,
		ReadLagInterval: -1,
		StartOffset:     kafka.FirstOffset,
	})
}

// DecodeTelemetry parses one telemetry message. The message time stands in
// for a missing sample timestamp.
func DecodeTelemetry(m kafka.Message) (model.TelemetrySample, error) {
	var s model.TelemetrySample
	if err := model.UnmarshalTelemetry(m.Value, &s, m.Time); err != nil {
		return s, fmt.Errorf("unmarshal telemetry: %w", err)
	}
	if s.Vehicle == "" {
		s.Vehicle = string(m.Key)
	}
	if s.Vehicle == "" {
		return s, ErrMissingVehicle
	}
	if !geo.ValidCoordinate(s.Latitude, s.Longitude) {
		return s, ErrInvalidCoordinate
	}
	return s, nil
}

// ConsumeTelemetry reads r until ctx is done or the reader is closed,
// handing every valid sample to handle. Undecodable messages are logged and
// skipped.
func ConsumeTelemetry(ctx context.Context, r MessageReader, log zerolog.Logger, handle func(model.TelemetrySample)) error {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			log.Warn().Err(err).Msg("read error")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		s, err := DecodeTelemetry(m)
		if err != nil {
			log.Debug().Err(err).Int("partition", m.Partition).Int64("offset", m.Offset).Msg("skipping message")
			continue
		}
		handle(s)
	}
}

// ReplayPartition reads one partition from its first to its last offset at
// call time and returns the number of samples handled.
func ReplayPartition(ctx context.Context, broker, topic string, partition int, log zerolog.Logger, handle func(model.TelemetrySample)) (int, error) {
	conn, err := kafka.DialLeader(ctx, "tcp", broker, topic, partition)
	if err != nil {
		return 0, fmt.Errorf("connect to partition %d: %w", partition, err)
	}
	first, last, err := conn.ReadOffsets()
	conn.Close()
	if err != nil {
		return 0, fmt.Errorf("read offsets of partition %d: %w", partition, err)
	}
	if last <= first {
		return 0, nil
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     topic,
		Partition: partition,
		MinBytes:  1e3,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	defer r.Close()
	if err := r.SetOffset(first); err != nil {
		return 0, fmt.Errorf("seek partition %d: %w", partition, err)
	}

	handled := 0
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			return handled, err
		}
		if s, err := DecodeTelemetry(m); err == nil {
			handle(s)
			handled++
		} else {
			log.Debug().Err(err).Int("partition", partition).Int64("offset", m.Offset).Msg("skipping message")
		}
		if m.Offset >= last-1 {
			return handled, nil
		}
	}
}
