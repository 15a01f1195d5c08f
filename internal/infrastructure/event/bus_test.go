package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quoteflow/backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, businessID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), businessID),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("budget.created")
	bus.Subscribe(handler, "budget.created")

	event := newTestEvent("budget.created", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_PublishToMultipleHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h1 := newTestHandler("budget.payment_received")
	h2 := newTestHandler("budget.payment_received")
	bus.Subscribe(h1)
	bus.Subscribe(h2)

	err := bus.Publish(context.Background(), newTestEvent("budget.payment_received", uuid.New()))

	require.NoError(t, err)
	assert.Len(t, h1.getHandled(), 1)
	assert.Len(t, h2.getHandled(), 1)
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	wildcard := newTestHandler()
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("budget.created", uuid.New())))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("expense.recorded", uuid.New())))

	assert.Len(t, wildcard.getHandled(), 2)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("budget.superseded")
	failing.err = errors.New("boom")
	ok := newTestHandler("budget.superseded")
	bus.Subscribe(failing)
	bus.Subscribe(ok)

	err := bus.Publish(context.Background(), newTestEvent("budget.superseded", uuid.New()))

	require.NoError(t, err)
	assert.Len(t, ok.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("budget.created")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("budget.created", uuid.New())))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_PanickingHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bus.Subscribe(panicHandler{}, "budget.created")
	after := newTestHandler("budget.created")
	bus.Subscribe(after)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("budget.created", uuid.New())))
	assert.Len(t, after.getHandled(), 1)
}

type panicHandler struct{}

func (panicHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	panic("handler blew up")
}

func (panicHandler) EventTypes() []string { return nil }
