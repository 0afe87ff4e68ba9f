// Package events publishes sale and pricing events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/config"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// EventType names a published event.
type EventType string

const (
	EventTypeSaleRecorded  EventType = "sale.recorded"
	EventTypeSaleCancelled EventType = "sale.cancelled"
	EventTypePriceChanged  EventType = "price.changed"
)

// Event is the envelope written to Kafka.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher emits domain events. Implementations must not block the caller
// for long; errors are returned for logging only.
type Publisher interface {
	PublishSaleRecorded(ctx context.Context, sale *entity.Sale) error
	PublishSaleCancelled(ctx context.Context, sale *entity.Sale) error
	PublishPriceChanged(ctx context.Context, change *entity.PriceChange) error
	Close() error
}

// MessageWriter is the part of kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes events to Kafka.
type KafkaPublisher struct {
	sales   MessageWriter
	pricing MessageWriter
	log     zerolog.Logger
}

// NewKafkaPublisher creates writers for the sales and pricing topics.
func NewKafkaPublisher(cfg config.KafkaConfig, log zerolog.Logger) *KafkaPublisher {
	return NewKafkaPublisherWithWriters(newWriter(cfg.Brokers, cfg.SalesTopic), newWriter(cfg.Brokers, cfg.PricingTopic), log)
}

// NewKafkaPublisherWithWriters wires pre-built writers.
func NewKafkaPublisherWithWriters(sales, pricing MessageWriter, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		sales:   sales,
		pricing: pricing,
		log:     log.With().Str("component", "event-publisher").Logger(),
	}
}

// New returns a Kafka publisher when brokers are configured, otherwise a no-op one.
func New(cfg config.KafkaConfig, log zerolog.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka not configured, events disabled")
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg, log)
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// SalePayload is the data of sale events.
type SalePayload struct {
	SaleID      uuid.UUID         `json:"sale_id"`
	ReceiptNo   string            `json:"receipt_no"`
	Status      string            `json:"status"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	BranchID    uuid.UUID         `json:"branch_id"`
	TotalAmount string            `json:"total_amount"`
	Items       []SaleItemPayload `json:"items"`
	Date        time.Time         `json:"date"`
}

type SaleItemPayload struct {
	ProductID  uuid.UUID  `json:"product_id"`
	VariantID  *uuid.UUID `json:"variant_id,omitempty"`
	QuantityKg string     `json:"quantity_kg"`
	UnitPrice  string     `json:"unit_price"`
	TotalPrice string     `json:"total_price"`
}

func newSalePayload(sale *entity.Sale) SalePayload {
	p := SalePayload{
		SaleID:      sale.ID,
		ReceiptNo:   sale.ReceiptNo,
		Status:      sale.Status.String(),
		CustomerID:  sale.CustomerID,
		BranchID:    sale.BranchID,
		TotalAmount: sale.TotalAmount.StringFixed(2),
		Items:       make([]SaleItemPayload, 0, len(sale.Items)),
		Date:        sale.Date,
	}
	for _, it := range sale.Items {
		p.Items = append(p.Items, SaleItemPayload{
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			QuantityKg: it.QuantityKg.String(),
			UnitPrice:  it.UnitPrice.String(),
			TotalPrice: it.TotalPrice.StringFixed(2),
		})
	}
	return p
}

func (p *KafkaPublisher) PublishSaleRecorded(ctx context.Context, sale *entity.Sale) error {
	return p.publish(ctx, p.sales, EventTypeSaleRecorded, sale.ID.String(), newSalePayload(sale))
}

func (p *KafkaPublisher) PublishSaleCancelled(ctx context.Context, sale *entity.Sale) error {
	return p.publish(ctx, p.sales, EventTypeSaleCancelled, sale.ID.String(), newSalePayload(sale))
}

func (p *KafkaPublisher) PublishPriceChanged(ctx context.Context, change *entity.PriceChange) error {
	return p.publish(ctx, p.pricing, EventTypePriceChanged, change.ProductID.String(), change)
}

func (p *KafkaPublisher) publish(ctx context.Context, w MessageWriter, eventType EventType, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Key:       key,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		p.log.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(eventType)).
			Str("key", key).
			Msg("Failed to publish event")
		return err
	}

	p.log.Debug().
		Str("event_id", event.ID).
		Str("event_type", string(eventType)).
		Str("key", key).
		Msg("Event published")
	return nil
}

// Close closes both writers.
func (p *KafkaPublisher) Close() error {
	err := p.sales.Close()
	if perr := p.pricing.Close(); err == nil {
		err = perr
	}
	return err
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishSaleRecorded(context.Context, *entity.Sale) error        { return nil }
func (NoopPublisher) PublishSaleCancelled(context.Context, *entity.Sale) error       { return nil }
func (NoopPublisher) PublishPriceChanged(context.Context, *entity.PriceChange) error { return nil }
func (NoopPublisher) Close() error                                                   { return nil }
