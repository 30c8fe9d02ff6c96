package queue

import (
	"context"
	"testing"
	"time"
)

func frame(payload string) Frame {
	return Frame{Payload: []byte(payload), Received: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, frame(`["$F",9999,"","","","Green"]`)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	f := <-out
	if string(f.Payload) != `["$F",9999,"","","","Green"]` {
		t.Errorf("unexpected payload %q", f.Payload)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, frame("a")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, frame("b")) {
		t.Error("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, frame("c")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_PreservesOrder(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(16))
	ctx := context.Background()

	payloads := []string{"one", "two", "three", "four"}
	for _, p := range payloads {
		if !q.Enqueue(ctx, frame(p)) {
			t.Fatalf("enqueue %q failed", p)
		}
	}

	out := q.Dequeue(ctx)
	for _, want := range payloads {
		got := <-out
		if string(got.Payload) != want {
			t.Errorf("expected %q, got %q", want, got.Payload)
		}
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, frame("last")) {
		t.Error("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, frame("late")) {
		t.Error("expected enqueue to fail after close")
	}

	// Already-buffered frames drain before the channel closes.
	out := q.Dequeue(ctx)
	if f, ok := <-out; !ok || string(f.Payload) != "last" {
		t.Errorf("expected buffered frame, got %q ok=%v", f.Payload, ok)
	}
	if _, ok := <-out; ok {
		t.Error("expected dequeue channel to close after drain")
	}

	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
}
