package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/Shopify/sarama"
	"go.uber.org/zap"
)

// ActivationEventType is the type of events published by [KafkaMailer].
const ActivationEventType = "lms.auth.activation_requested"

// ActivationEvent is the message a mail worker consumes to send the
// activation mail. The recipient email is the message key.
type ActivationEvent struct {
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Code      string    `json:"activationCode"`
	ExpiresAt time.Time `json:"expiresAt"`
	Time      time.Time `json:"time"`
}

// KafkaMailer publishes activation events to a topic.
type KafkaMailer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
	now      func() time.Time
}

// NewKafkaProducer creates a synchronous producer that waits for all
// in-sync replicas.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

func NewKafkaMailer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaMailer{producer: producer, topic: topic, logger: logger, now: time.Now}
}

func (m *KafkaMailer) SendActivation(ctx context.Context, mail lmsAuth.ActivationMail) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	now := m.now().UTC()
	payload, err := json.Marshal(ActivationEvent{
		Type:      ActivationEventType,
		Name:      mail.Name,
		Email:     mail.Email,
		Code:      mail.Code,
		ExpiresAt: now.Add(mail.ExpiresIn),
		Time:      now,
	})
	if err != nil {
		return fmt.Errorf("marshal activation event: %w", err)
	}

	partition, offset, err := m.producer.SendMessage(&sarama.ProducerMessage{
		Topic: m.topic,
		Key:   sarama.StringEncoder(mail.Email),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		m.logger.Error("activation event failed", zap.String("topic", m.topic), zap.Error(err))
		return fmt.Errorf("failed to send activation event to Kafka: %w", err)
	}

	m.logger.Debug("activation event sent",
		zap.String("topic", m.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close closes the underlying producer.
func (m *KafkaMailer) Close() error {
	if err := m.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

var _ lmsAuth.Mailer = (*KafkaMailer)(nil)
