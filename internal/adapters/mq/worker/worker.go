// Package worker drains the frame queue into the aggregation state.
//
// Exactly one worker runs per process. The protocol has no sequence
// numbers, so ordering is whatever the transport delivered; a pool here
// would reorder updates and corrupt the running order.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/pitwall/internal/domain/message"
	"github.com/okian/pitwall/internal/domain/model"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// Frame abstracts what the worker reads off the queue.
type Frame = model.Frame

// Applier consumes decoded messages and mutates the aggregation state.
// The worker is its only caller, so implementations own their state
// without locking the mutation path.
type Applier interface {
	Apply(ctx context.Context, m message.Message)
}

// Queue defines how the worker receives frames.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Frame
}

// Worker decodes frames and applies them until stopped.
type Worker struct {
	queue   Queue
	applier Applier

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// New creates a dispatch worker with configuration options.
func New(queue Queue, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		applier:  applier,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("dispatch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the dispatch loop. It returns when the context is cancelled,
// Shutdown is called, or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	frames := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := w.dispatch(ctx, f); err != nil {
				// A bad frame is dropped; the stream continues.
				metrics.RecordDecodeError()
				w.logger.Warn(ctx, "dropping undecodable frame",
					logger.String("payload", string(f.Payload)),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for the in-flight frame to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// dispatch decodes one frame and applies it to the aggregation state.
func (w *Worker) dispatch(ctx context.Context, f Frame) error {
	start := time.Now()
	defer func() {
		metrics.RecordDispatchLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	m, err := message.Decode(f.Payload)
	if err != nil {
		return err
	}
	metrics.RecordFrameDecoded(string(m.Kind()))
	w.applier.Apply(ctx, m)
	return nil
}
