package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2/log"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
	TypePlanApplied        = "plan.applied"
	TypeWasteLogged        = "waste.logged"
	TypeNotification       = "notification.pushed"

	DefaultTopic = "smartcanteen.kitchen"
)

type (
	// Publisher mirrors kitchen activity to an event stream.
	Publisher interface {
		Publish(ctx context.Context, eventType string, key string, payload interface{}) error
		Close() error
	}

	Event struct {
		Type       string      `json:"type"`
		OccurredAt time.Time   `json:"occurredAt"`
		Payload    interface{} `json:"payload"`
	}

	kafkaPublisher struct {
		producer sarama.SyncProducer
		topic    string
	}

	noopPublisher struct{}
)

func NewSaramaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Net.DialTimeout = 10 * time.Second
	config.Net.ReadTimeout = 10 * time.Second
	config.Net.WriteTimeout = 10 * time.Second
	return config
}

// NewKafkaPublisher returns a no-op publisher when no brokers are configured.
func NewKafkaPublisher(brokers []string, topic string) (Publisher, error) {
	if len(brokers) == 0 || topic == "" {
		return NoopPublisher(), nil
	}

	producer, err := sarama.NewSyncProducer(brokers, NewSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Infof("kafka producer created with brokers %v", brokers)
	return NewPublisherWithProducer(producer, topic), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) Publisher {
	return &kafkaPublisher{producer: producer, topic: topic}
}

func NoopPublisher() Publisher {
	return noopPublisher{}
}

func (k *kafkaPublisher) Publish(ctx context.Context, eventType string, key string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return err
	}

	message := &sarama.ProducerMessage{
		Topic: k.topic,
		Value: sarama.ByteEncoder(msg),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(eventType)},
		},
	}
	if key != "" {
		message.Key = sarama.StringEncoder(key)
	}

	if _, _, err := k.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to send %s event: %w", eventType, err)
	}
	return nil
}

func (k *kafkaPublisher) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}

func (noopPublisher) Publish(context.Context, string, string, interface{}) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
