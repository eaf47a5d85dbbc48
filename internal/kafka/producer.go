package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// PickupEvent records one operator action on the pickup board. The worker
// consumes these to notify the affected guide.
type PickupEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	DateKey     string    `json:"date_key"`
	GuideID     string    `json:"guide_id"`
	GuideName   string    `json:"guide_name"`
	PickupPlace string    `json:"pickup_place,omitempty"`
	Arrived     bool      `json:"arrived,omitempty"`
	NoShow      bool      `json:"no_show,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

const (
	EventAssignmentChanged  = "assignment_changed"
	EventStatusChanged      = "status_changed"
	EventPickupPlaceUpdated = "pickup_place_updated"
	EventOrderSaved         = "order_saved"
	EventOrderReset         = "order_reset"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
