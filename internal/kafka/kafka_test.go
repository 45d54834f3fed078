package kafka

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	writer := &MockWriter{}
	p := &Producer{writer: writer, logger: zap.NewNop()}
	ctx := context.Background()

	event := CheckoutEvent{Type: EventPaymentSucceeded, SessionID: "s-1", BookingIDs: []int64{1, 2}}

	writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || msgs[0].Topic != "checkout-events" || string(msgs[0].Key) != "s-1" {
			return false
		}
		var decoded CheckoutEvent
		return json.Unmarshal(msgs[0].Value, &decoded) == nil && decoded.Type == EventPaymentSucceeded
	})).Return(nil).Once()

	require.NoError(t, p.Publish(ctx, "checkout-events", "s-1", event))
	writer.AssertExpectations(t)
}

func TestConsumer_ConsumeEvents(t *testing.T) {
	good, err := json.Marshal(CheckoutEvent{Type: EventPaymentAmbiguous, SessionID: "s-2", OccurredAt: time.Now()})
	require.NoError(t, err)

	c := &Consumer{
		reader: &fakeReader{msgs: []kafka.Message{
			{Topic: "notifications", Value: []byte("not json")},
			{Topic: "notifications", Value: good},
		}},
		logger: zap.NewNop(),
	}

	var got []CheckoutEvent
	err = c.ConsumeEvents(context.Background(), func(ctx context.Context, e CheckoutEvent) error {
		got = append(got, e)
		return nil
	})

	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, got, 1)
	assert.Equal(t, EventPaymentAmbiguous, got[0].Type)
	assert.Equal(t, "s-2", got[0].SessionID)
}
