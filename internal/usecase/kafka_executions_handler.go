package usecase

import (
	"context"
	"encoding/json"
	"time"

	"TradeBot365/internal/domain/models"
	domrepo "TradeBot365/internal/domain/repository"
	pkgkafka "TradeBot365/pkg/kafka"
)

// KafkaExecutionsHandler consumes downstream execution records ("Coinstrat
// signals") and writes them to storage.
type KafkaExecutionsHandler struct {
	topic   string
	store   domrepo.ExecutionStore
	metrics domrepo.Metrics
}

func NewKafkaExecutionsHandler(topic string, store domrepo.ExecutionStore, metrics domrepo.Metrics) *KafkaExecutionsHandler {
	return &KafkaExecutionsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaExecutionsHandler) Topic() string { return h.topic }

type wireOutcome struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	T         int64  `json:"t"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	ErrorCode string `json:"error_code"`
}

func (w wireOutcome) outcome(def models.OutcomeStatus) models.AccountOutcome {
	status := models.OutcomeStatus(w.Status)
	if status == "" {
		status = def
	}
	return models.AccountOutcome{
		AccountID: w.AccountID,
		UserID:    w.UserID,
		Name:      w.Name,
		Timestamp: unixToTime(w.T),
		Status:    status,
		Reason:    w.Reason,
		ErrorCode: w.ErrorCode,
	}
}

// incoming message schema: {id, signal_id, t, error_message, processed, failed}
func (h *KafkaExecutionsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ID           string        `json:"id"`
		SignalID     string        `json:"signal_id"`
		T            int64         `json:"t"`
		ErrorMessage string        `json:"error_message"`
		Processed    []wireOutcome `json:"processed"`
		Failed       []wireOutcome `json:"failed"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	rec := models.ExecutionRecord{
		ID:           m.ID,
		SignalID:     m.SignalID,
		Timestamp:    unixToTime(m.T),
		ErrorMessage: m.ErrorMessage,
	}
	for _, w := range m.Processed {
		rec.ProcessedAccounts = append(rec.ProcessedAccounts, w.outcome(models.OutcomeSuccess))
	}
	for _, w := range m.Failed {
		rec.FailedAccounts = append(rec.FailedAccounts, w.outcome(models.OutcomeFailed))
	}

	start := time.Now()
	if err := h.store.StoreExecution(ctx, &rec); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("execution_insert_seconds", time.Since(start).Seconds())
	h.metrics.RecordMessageSent("clickhouse", m.SignalID)
	return nil
}

// unixToTime accepts seconds or milliseconds since epoch.
func unixToTime(t int64) time.Time {
	if t > 1e11 {
		t = t / 1000
	}
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).UTC()
}

var _ pkgkafka.MessageHandler = (*KafkaExecutionsHandler)(nil)
