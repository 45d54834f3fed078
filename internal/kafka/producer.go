package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
)

const (
	EventReservationBatchConfirmed = "reservation_batch_confirmed"
	EventReservationBatchFailed    = "reservation_batch_failed"
	EventPaymentSucceeded          = "payment_succeeded"
	EventPaymentFailed             = "payment_failed"
	EventPaymentAmbiguous          = "payment_ambiguous"
)

// CheckoutEvent is the payload of every message on the checkout topics.
type CheckoutEvent struct {
	Type           string    `json:"type"`
	SessionID      string    `json:"session_id"`
	FlightID       int64     `json:"flight_id"`
	FlightNumber   string    `json:"flight_number,omitempty"`
	BookingIDs     []int64   `json:"booking_ids,omitempty"`
	PNRs           []string  `json:"pnrs,omitempty"`
	SeatNumbers    []string  `json:"seat_numbers,omitempty"`
	PassengerName  string    `json:"passenger_name,omitempty"`
	PassengerEmail string    `json:"passenger_email,omitempty"`
	PaymentID      string    `json:"payment_id,omitempty"`
	TotalAmount    float64   `json:"total_amount,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	brokers []string
	writer  messageWriter
	logger  *zap.Logger
}

func NewProducer(brokers []string, l *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		logger:  logger.OrNop(l),
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

	p.logger.Debug("published to kafka", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.logger.Info("connected to kafka", zap.Int("partitions", len(partitions)))
	return nil
}
