package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/guregu/null/v5"

	"SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
	pkgkafka "SectorPulse/pkg/kafka"
)

// KafkaReturnsHandler consumes published return records and loads them into
// the warehouse. Active only in kafka backend mode.
type KafkaReturnsHandler struct {
	topic   string
	store   domrepo.ReturnStore
	metrics domrepo.Metrics
}

func NewKafkaReturnsHandler(topic string, store domrepo.ReturnStore, metrics domrepo.Metrics) *KafkaReturnsHandler {
	return &KafkaReturnsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaReturnsHandler) Topic() string { return h.topic }

// incoming message schema: one ReturnRecord as JSON
func (h *KafkaReturnsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Ticker      string     `json:"ticker"`
		Date        time.Time  `json:"date"`
		Close       float64    `json:"close"`
		PrevClose   float64    `json:"prev_close"`
		DailyReturn null.Float `json:"daily_return"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	err := h.store.StoreReturns(ctx, []models.ReturnRecord{{
		Ticker:      m.Ticker,
		Date:        m.Date,
		Close:       m.Close,
		PrevClose:   m.PrevClose,
		DailyReturn: m.DailyReturn,
	}})
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordBackendRows("clickhouse_loader", 1)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaReturnsHandler)(nil)
