package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/segmentio/kafka-go"
)

type TopicConfig struct {
	Topic             string
	NumPartitions     int
	ReplicationFactor int
}

// CreateTopics ensures each topic exists with the given config. Topics that
// already exist are left alone.
func CreateTopics(broker string, configs []TopicConfig) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return fmt.Errorf("dial %s: %w", broker, err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	hostPort := net.JoinHostPort(controller.Host, fmt.Sprint(controller.Port))
	ctrlConn, err := kafka.Dial("tcp", hostPort)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", hostPort, err)
	}
	defer ctrlConn.Close()

	for _, cfg := range configs {
		err = ctrlConn.CreateTopics(kafka.TopicConfig{
			Topic:             cfg.Topic,
			NumPartitions:     cfg.NumPartitions,
			ReplicationFactor: cfg.ReplicationFactor,
		})
		if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", cfg.Topic, err)
		}
	}
	return nil
}

// Partitions lists the partition ids of topic.
func Partitions(ctx context.Context, broker, topic string) ([]int, error) {
	conn, err := kafka.DialLeader(ctx, "tcp", broker, topic, 0)
	if err != nil {
		return nil, fmt.Errorf("connect to kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return nil, fmt.Errorf("read partitions: %w", err)
	}
	ids := make([]int, 0, len(partitions))
	for _, p := range partitions {
		if p.Topic == topic {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}
