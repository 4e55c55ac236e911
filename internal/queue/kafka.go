package queue

import (
	"context"
	"errors"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/emrgen/metadata/internal/model"
	"github.com/sirupsen/logrus"
)

const flushTimeoutMs = 5000

var _ EventQueue = (*Kafka)(nil)

// Kafka publishes audit events to a kafka topic keyed by target id.
type Kafka struct {
	producer *kafka.Producer
	topic    string
}

// NewKafka creates a producer connected to the given bootstrap servers.
func NewKafka(brokers, topic string) (*Kafka, error) {
	if brokers == "" {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		topic = EventTopic
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	return &Kafka{producer: producer, topic: topic}, nil
}

func (k *Kafka) Publish(ctx context.Context, event *model.Event) error {
	payload, err := event.MarshalBinary()
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.TargetID),
		Value:          payload,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return errors.New("kafka: unexpected delivery event")
		}
		return msg.TopicPartition.Error
	}
}

func (k *Kafka) Close() error {
	if remaining := k.producer.Flush(flushTimeoutMs); remaining > 0 {
		logrus.Warnf("kafka: %d events were not delivered before close", remaining)
	}
	k.producer.Close()
	return nil
}
