package botx

import "golang.org/x/exp/slog"

// Options of the Bot.
type Options struct {
	// Workers is the number of updates handled at once.
	Workers int
	Logger  *slog.Logger
}

// Option configures the Bot.
type Option func(*Options)

// WithWorkers sets the number of workers, non-positive values are ignored.
func WithWorkers(workers int) Option {
	return func(o *Options) {
		if workers > 0 {
			o.Workers = workers
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}
