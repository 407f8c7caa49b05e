package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chat-server/backend/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.Event
	ctxErrs []error
	emitErr error
	done    chan struct{}
}

func newMockEmitter() *mockEventEmitter {
	return &mockEventEmitter{done: make(chan struct{}, 64)}
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Event(nil), m.events...)
}

func (m *mockEventEmitter) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-m.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for emit %d of %d", i+1, n)
		}
	}
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	// Should not panic
	EmitAsync(nil, &domain.Event{WorkspaceID: 1, EventType: "test"})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := newMockEmitter()
	EmitAsync(emitter, nil)

	select {
	case <-emitter.done:
		t.Fatal("nil event should not be emitted")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := newMockEmitter()
	EmitAsync(emitter, &domain.Event{WorkspaceID: 1, UserID: 7, EventType: "test_event", Source: "test"})
	emitter.wait(t, 1)

	events := emitter.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].WorkspaceID != 1 || events[0].UserID != 7 {
		t.Errorf("event = %+v", events[0])
	}
	if events[0].EventType != "test_event" {
		t.Errorf("event type = %q, want %q", events[0].EventType, "test_event")
	}
}

func TestEmitAsync_ContextHasDeadline(t *testing.T) {
	emitter := newMockEmitter()
	EmitAsync(emitter, &domain.Event{EventType: "test"})
	emitter.wait(t, 1)

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if emitter.ctxErrs[0] != nil {
		t.Errorf("emit context already done: %v", emitter.ctxErrs[0])
	}
}

func TestEmitAsync_ErrorIsSwallowed(t *testing.T) {
	emitter := newMockEmitter()
	emitter.emitErr = errors.New("broker down")

	EmitAsync(emitter, &domain.Event{EventType: "test"})
	emitter.wait(t, 1)
}

func TestEmitAsync_ConcurrentAccess(t *testing.T) {
	emitter := newMockEmitter()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, &domain.Event{WorkspaceID: 1, EventType: "test"})
		}()
	}
	wg.Wait()
	emitter.wait(t, 10)

	if n := len(emitter.getEvents()); n != 10 {
		t.Errorf("expected 10 events, got %d", n)
	}
}

func TestFanout_EmitsToAllAndJoinsErrors(t *testing.T) {
	a := &mockEventEmitter{}
	b := &mockEventEmitter{emitErr: errors.New("b failed")}
	c := &mockEventEmitter{}
	f := Fanout{a, nil, b, c}

	err := f.Emit(context.Background(), &domain.Event{EventType: "test"})
	if err == nil || err.Error() != "b failed" {
		t.Errorf("err = %v, want b failed", err)
	}
	for i, m := range []*mockEventEmitter{a, b, c} {
		if len(m.getEvents()) != 1 {
			t.Errorf("emitter %d got %d events, want 1", i, len(m.getEvents()))
		}
	}
}

func TestFanout_Empty(t *testing.T) {
	if err := (Fanout{}).Emit(context.Background(), &domain.Event{}); err != nil {
		t.Errorf("empty fanout: %v", err)
	}
}
