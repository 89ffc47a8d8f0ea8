package provisioner

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/segmentio/kafka-go"
)

// KafkaProvisioner creates the topic a kafka sink writes to, if it
// doesn't already exist.
//
// Adapted from the teacher's KafkaProvisioner.createTopic: dial the
// first broker, hop to the controller connection, and issue
// CreateTopics there. The provisioning-only knobs (num_partitions,
// replication_factor, retention_ms) have no counterpart in the sink
// backend, which only ever writes to an existing topic.
type KafkaProvisioner struct{}

func NewKafkaProvisioner() *KafkaProvisioner { return &KafkaProvisioner{} }

// Provision reads the same "brokers"/"topic" params the sink backend
// itself consumes (pkg/sink/kafka.go), so one params table describes
// both where to write and what to provision.
func (p *KafkaProvisioner) Provision(ctx context.Context, params map[string]any) error {
	topic, err := requireNonEmpty(params, "topic")
	if err != nil {
		return err
	}
	brokersRaw, err := requireNonEmpty(params, "brokers")
	if err != nil {
		return err
	}
	brokers := strings.Split(brokersRaw, ",")

	exists, err := p.topicExists(ctx, brokers[0], topic)
	if err != nil {
		return fmt.Errorf("check topic %q: %w", topic, err)
	}
	if exists {
		return nil
	}

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker %q: %w", brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}

	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     intParam(params, "num_partitions", 1),
		ReplicationFactor: intParam(params, "replication_factor", 1),
		ConfigEntries: []kafka.ConfigEntry{
			{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(int64(intParam(params, "retention_ms", 604800000)), 10)},
		},
	})
	if err != nil && !strings.Contains(err.Error(), "Topic with this name already exists") {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	return nil
}

func (p *KafkaProvisioner) topicExists(ctx context.Context, broker, topic string) (bool, error) {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(topic)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}
