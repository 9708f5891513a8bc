package repository

import (
	"context"
	"time"

	"TradeBot365/internal/domain/models"
	"TradeBot365/internal/domain/repository"
	pkgkafka "TradeBot365/pkg/kafka"
)

// KafkaEventPublisher implements Publisher for Kafka.
type KafkaEventPublisher struct {
	producer        *pkgkafka.Producer
	signalTopic     string
	resolutionTopic string
}

// NewKafkaEventPublisher creates a Kafka publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, signalTopic, resolutionTopic string) repository.Publisher {
	return &KafkaEventPublisher{producer: producer, signalTopic: signalTopic, resolutionTopic: resolutionTopic}
}

func signalPayload(s *models.Signal) map[string]interface{} {
	return map[string]interface{}{
		"id":         s.ID,
		"instrument": s.Instrument,
		"action":     string(s.Action),
		"qty":        s.Quantity.String(),
		"t":          s.Timestamp.Unix(),
		"bot_id":     s.BotID,
		"user_id":    s.UserID,
		"status":     s.Status,
	}
}

func (p *KafkaEventPublisher) PublishSignal(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.signalTopic, []byte(s.BotID), signalPayload(s))
}

func (p *KafkaEventPublisher) PublishSignalBatch(ctx context.Context, signals []*models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(signals))
	for i, s := range signals {
		msgs[i] = pkgkafka.Message{Key: []byte(s.BotID), Value: signalPayload(s)}
	}
	return p.producer.PublishBatch(ctx, p.signalTopic, msgs)
}

func (p *KafkaEventPublisher) PublishResolution(ctx context.Context, signalID, note string) error {
	return p.producer.Publish(ctx, p.resolutionTopic, []byte(signalID), map[string]interface{}{
		"signal_id":   signalID,
		"note":        note,
		"resolved_at": time.Now().Unix(),
	})
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
