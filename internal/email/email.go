package email

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/kafka"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a composed message.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// LogTransport writes messages to the log instead of a mail server.
type LogTransport struct {
	logger *zap.Logger
}

func NewLogTransport(l *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger.OrNop(l)}
}

func (t *LogTransport) Deliver(ctx context.Context, msg Message) error {
	t.logger.Info("send email", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.String("body", msg.Body))
	return nil
}

type Sender struct {
	transport Transport
	logger    *zap.Logger
}

func NewSender(transport Transport, l *zap.Logger) *Sender {
	return &Sender{transport: transport, logger: logger.OrNop(l)}
}

// Send notifies the passenger about events they need to act on. Other event
// types are ignored.
func (s *Sender) Send(ctx context.Context, event kafka.CheckoutEvent) error {
	msg, ok := Compose(event)
	if !ok {
		return nil
	}
	if msg.To == "" {
		s.logger.Warn("checkout event without passenger email", zap.String("type", event.Type), zap.String("session_id", event.SessionID))
		return nil
	}
	if err := s.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver %s email: %w", event.Type, err)
	}
	return nil
}

func Compose(event kafka.CheckoutEvent) (Message, bool) {
	seats := strings.Join(event.SeatNumbers, ", ")

	switch event.Type {
	case kafka.EventPaymentSucceeded:
		return Message{
			To:      event.PassengerEmail,
			Subject: fmt.Sprintf("Booking confirmed: %s", event.FlightNumber),
			Body: fmt.Sprintf("Dear %s,\n\nYour payment of %.2f was received. Seats %s on flight %s are confirmed.\nPNR: %s\n",
				event.PassengerName, event.TotalAmount, seats, event.FlightNumber, strings.Join(event.PNRs, ", ")),
		}, true
	case kafka.EventPaymentAmbiguous:
		return Message{
			To:      event.PassengerEmail,
			Subject: fmt.Sprintf("Check your booking status: %s", event.FlightNumber),
			Body: fmt.Sprintf("Dear %s,\n\nWe could not confirm whether your payment for seats %s on flight %s went through (%s).\nPlease check your booking status before paying again.\n",
				event.PassengerName, seats, event.FlightNumber, event.Reason),
		}, true
	}
	return Message{}, false
}
