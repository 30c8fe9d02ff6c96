package worker

import "github.com/okian/pitwall/pkg/logger"

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}
