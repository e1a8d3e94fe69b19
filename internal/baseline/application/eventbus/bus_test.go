package eventbus

import (
	"context"
	"errors"
	"testing"
)

type sampleEvent struct {
	ID string
}

func TestOnMatchesValueAndPointer(t *testing.T) {
	bus := NewInMemoryBus()
	var seen []string
	On(bus, func(_ context.Context, evt sampleEvent) error {
		seen = append(seen, evt.ID)
		return nil
	})

	ctx := context.Background()
	if err := bus.Publish(ctx, sampleEvent{ID: "a"}); err != nil {
		t.Fatalf("publish value: %v", err)
	}
	if err := bus.Publish(ctx, &sampleEvent{ID: "b"}); err != nil {
		t.Fatalf("publish pointer: %v", err)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("unexpected deliveries: %v", seen)
	}
}

func TestPublishReturnsFirstError(t *testing.T) {
	bus := NewInMemoryBus()
	first := errors.New("first")
	calls := 0
	On(bus, func(context.Context, sampleEvent) error {
		calls++
		return first
	})
	On(bus, func(context.Context, sampleEvent) error {
		calls++
		return errors.New("second")
	})

	err := bus.Publish(context.Background(), sampleEvent{})
	if !errors.Is(err, first) {
		t.Fatalf("expected first error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected every handler to run, got %d", calls)
	}
}

func TestPublishNil(t *testing.T) {
	bus := NewInMemoryBus()
	if err := bus.Publish(context.Background(), nil); !errors.Is(err, ErrNilEvent) {
		t.Fatalf("expected ErrNilEvent, got %v", err)
	}
}

func TestEventTypeOf(t *testing.T) {
	if EventTypeOf[sampleEvent]() != EventType(&sampleEvent{}) {
		t.Fatalf("type names differ: %s vs %s", EventTypeOf[sampleEvent](), EventType(&sampleEvent{}))
	}
}
