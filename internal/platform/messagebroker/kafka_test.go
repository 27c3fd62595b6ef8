package messagebroker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaProducer_Publish(t *testing.T) {
	w := new(mockWriter)
	p := &KafkaProducer{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 && msgs[0].Topic == "churn.prediction.made" && string(msgs[0].Value) == `{"label":1}`
	})).Return(nil).Once()

	require.NoError(t, p.Publish(context.Background(), "churn.prediction.made", []byte(`{"label":1}`)))
	w.AssertExpectations(t)
}

func TestKafkaProducer_PublishError(t *testing.T) {
	w := new(mockWriter)
	p := &KafkaProducer{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	brokerErr := errors.New("leader not available")

	w.On("WriteMessages", mock.Anything, mock.Anything).Return(brokerErr).Once()

	err := p.Publish(context.Background(), "topic", []byte("x"))
	assert.ErrorIs(t, err, brokerErr)
	assert.Contains(t, err.Error(), "topic")
}

func TestKafkaProducer_Close(t *testing.T) {
	w := new(mockWriter)
	p := &KafkaProducer{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	w.On("Close").Return(errors.New("already closed")).Once()

	p.Close()
	w.AssertExpectations(t)
}
