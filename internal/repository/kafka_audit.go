package repository

import (
	"context"

	"FinSight/internal/domain/models"
	domrepo "FinSight/internal/domain/repository"
	pkgkafka "FinSight/pkg/kafka"
)

// KafkaAudit publishes per-request audit events to a Kafka topic. Events
// are keyed by the top ticker so per-symbol ordering is preserved.
type KafkaAudit struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAudit(producer *pkgkafka.Producer, topic string) *KafkaAudit {
	return &KafkaAudit{producer: producer, topic: topic}
}

func (a *KafkaAudit) Publish(ctx context.Context, ev *models.AuditEvent) error {
	key := []byte(ev.TopTicker)
	if len(key) == 0 {
		key = []byte(ev.Intent)
	}
	return a.producer.Publish(ctx, a.topic, key, ev)
}

func (a *KafkaAudit) Close() error {
	return a.producer.Close()
}

var _ domrepo.AuditPublisher = (*KafkaAudit)(nil)
