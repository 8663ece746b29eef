package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"appointment-service/internal/domain/entity"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testEvent() *entity.AppointmentEvent {
	return &entity.AppointmentEvent{
		ID:            "evt-1",
		Type:          entity.AppointmentEventCreated,
		AppointmentID: 42,
		Status:        entity.AppointmentStatusScheduled,
		PatientID:     1,
		DoctorID:      2,
		OccurredAt:    time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	pub := newKafkaPublisher(writer, "appointment-events")

	require.NoError(t, pub.Publish(context.Background(), testEvent()))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))

	var decoded entity.AppointmentEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, entity.AppointmentEventCreated, decoded.Type)
	assert.Equal(t, int64(42), decoded.AppointmentID)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "evt-1", headers["event_id"])
	assert.Equal(t, "appointment.created", headers["event_type"])
}

func TestKafkaPublisher_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	writer := &fakeWriter{}
	require.NoError(t, newKafkaPublisher(writer, "t").Publish(ctx, testEvent()))

	var traceparent string
	for _, h := range writer.messages[0].Headers {
		if h.Key == "traceparent" {
			traceparent = string(h.Value)
		}
	}
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", traceparent)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writeErr := errors.New("leader not available")
	pub := newKafkaPublisher(&fakeWriter{err: writeErr}, "t")

	err := pub.Publish(context.Background(), testEvent())
	assert.ErrorIs(t, err, writeErr)
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &fakeWriter{}
	require.NoError(t, newKafkaPublisher(writer, "t").Close())
	assert.True(t, writer.closed)
}

func TestNoopPublisher(t *testing.T) {
	pub := NewNoopPublisher()
	assert.NoError(t, pub.Publish(context.Background(), testEvent()))
	assert.NoError(t, pub.Close())
}
