package resource

import (
	"context"

	"github.com/rs/zerolog"
)

type options struct {
	logger   zerolog.Logger
	recorder Recorder
	parent   context.Context
}

// Option configures a Session.
type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

// WithContext sets the parent of every fetch context. Cancelling it aborts
// in-flight fetches; their results are then discarded or reported as failures.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.parent = ctx
		}
	}
}
