package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/kafka"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Deliver(ctx context.Context, msg Message) error {
	return m.Called(ctx, msg).Error(0)
}

func TestSender_Send(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name            string
		event           kafka.CheckoutEvent
		expectDelivery  bool
		subjectContains string
	}{
		{
			name: "payment succeeded",
			event: kafka.CheckoutEvent{
				Type: kafka.EventPaymentSucceeded, PassengerEmail: "asha@example.com", PassengerName: "Asha",
				FlightNumber: "AI202", SeatNumbers: []string{"1A", "1B"}, PNRs: []string{"PNR1", "PNR2"}, TotalAmount: 9000,
			},
			expectDelivery:  true,
			subjectContains: "Booking confirmed",
		},
		{
			name: "payment ambiguous",
			event: kafka.CheckoutEvent{
				Type: kafka.EventPaymentAmbiguous, PassengerEmail: "asha@example.com", FlightNumber: "AI202", Reason: "timeout",
			},
			expectDelivery:  true,
			subjectContains: "Check your booking status",
		},
		{name: "payment failed is not mailed", event: kafka.CheckoutEvent{Type: kafka.EventPaymentFailed, PassengerEmail: "a@b.co"}},
		{name: "batch events are not mailed", event: kafka.CheckoutEvent{Type: kafka.EventReservationBatchFailed, PassengerEmail: "a@b.co"}},
		{name: "missing address", event: kafka.CheckoutEvent{Type: kafka.EventPaymentSucceeded}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &MockTransport{}
			sender := NewSender(transport, zap.NewNop())

			if tc.expectDelivery {
				transport.On("Deliver", ctx, mock.MatchedBy(func(msg Message) bool {
					return msg.To == tc.event.PassengerEmail && strings.Contains(msg.Subject, tc.subjectContains)
				})).Return(nil).Once()
			}

			assert.NoError(t, sender.Send(ctx, tc.event))

			if tc.expectDelivery {
				transport.AssertExpectations(t)
			} else {
				transport.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestSender_Send_TransportError(t *testing.T) {
	transport := &MockTransport{}
	sender := NewSender(transport, nil)
	transport.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := sender.Send(context.Background(), kafka.CheckoutEvent{Type: kafka.EventPaymentSucceeded, PassengerEmail: "a@b.co"})
	assert.ErrorContains(t, err, "deliver payment_succeeded email")
}

func TestCompose_SuccessBody(t *testing.T) {
	msg, ok := Compose(kafka.CheckoutEvent{
		Type: kafka.EventPaymentSucceeded, PassengerName: "Asha", FlightNumber: "AI202",
		SeatNumbers: []string{"1A", "1B"}, PNRs: []string{"PNR1", "PNR2"}, TotalAmount: 9000,
	})

	assert.True(t, ok)
	assert.Contains(t, msg.Body, "Seats 1A, 1B on flight AI202")
	assert.Contains(t, msg.Body, "PNR: PNR1, PNR2")
	assert.Contains(t, msg.Body, "9000.00")
}

func TestLogTransport_Deliver(t *testing.T) {
	assert.NoError(t, NewLogTransport(nil).Deliver(context.Background(), Message{To: "a@b.co"}))
}
