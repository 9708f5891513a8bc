package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"TradeBot365/internal/domain/models"
	domrepo "TradeBot365/internal/domain/repository"
	"TradeBot365/internal/services/classify"
	pkgkafka "TradeBot365/pkg/kafka"
)

// KafkaErrorsHandler consumes upstream error signals, normalizes their bot
// ids, and writes them to storage.
type KafkaErrorsHandler struct {
	topic   string
	store   domrepo.SignalStore
	metrics domrepo.Metrics
}

func NewKafkaErrorsHandler(topic string, store domrepo.SignalStore, metrics domrepo.Metrics) *KafkaErrorsHandler {
	return &KafkaErrorsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaErrorsHandler) Topic() string { return h.topic }

func (h *KafkaErrorsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ID               string   `json:"id"`
		Instrument       string   `json:"instrument"`
		Action           string   `json:"action"`
		Qty              string   `json:"qty"`
		T                int64    `json:"t"`
		BotID            string   `json:"bot_id"`
		BotName          string   `json:"bot_name"`
		BotType          string   `json:"bot_type"`
		UserID           string   `json:"user_id"`
		Status           string   `json:"status"`
		Severity         string   `json:"severity"`
		ErrorCode        string   `json:"error_code"`
		ErrorMessage     string   `json:"error_message"`
		ConnectedUserIDs []string `json:"connected_user_ids"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	qty, err := decimal.NewFromString(m.Qty)
	if err != nil {
		qty = decimal.Zero
	}
	kind := classify.BotTypeOf(m.BotType, m.BotID)
	e := models.ErrorSignal{
		Signal: models.Signal{
			ID:         m.ID,
			Instrument: m.Instrument,
			Action:     models.SignalAction(m.Action),
			Quantity:   qty,
			Timestamp:  unixToTime(m.T),
			BotID:      classify.NormalizeBotID(m.BotID, kind),
			UserID:     m.UserID,
			Status:     m.Status,
		},
		Severity:         classify.SeverityOf(models.Severity(m.Severity)),
		ErrorCode:        m.ErrorCode,
		ErrorMessage:     m.ErrorMessage,
		BotType:          string(kind),
		BotName:          m.BotName,
		ConnectedUserIDs: m.ConnectedUserIDs,
	}

	start := time.Now()
	if err := h.store.StoreErrorSignal(ctx, &e); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("error_insert_seconds", time.Since(start).Seconds())
	h.metrics.RecordMessageSent("clickhouse", e.BotID)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaErrorsHandler)(nil)
