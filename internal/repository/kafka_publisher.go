package repository

import (
	"context"

	"SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
	pkgkafka "SectorPulse/pkg/kafka"
)

// KafkaReturnPublisher implements Publisher for Kafka: return records are
// published as JSON keyed by ticker so a partition preserves per-ticker order.
type KafkaReturnPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaReturnPublisher creates a Kafka returns publisher.
func NewKafkaReturnPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaReturnPublisher{producer: producer, topic: topic}
}

func (p *KafkaReturnPublisher) PublishReturns(ctx context.Context, recs []models.ReturnRecord) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(recs))
	for i, r := range recs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.Ticker),
			Value: r,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaReturnPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
