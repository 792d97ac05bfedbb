package psn

import (
	"io"
	"log"
)

// progressStride is how many finalized permutations pass between progress reports.
const progressStride = 1 << 12

// ProgressFunc receives the number of finalized permutations and the total, n!.
type ProgressFunc func(done, total uint64)

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger   *log.Logger
	progress ProgressFunc
	check    bool
}

func defaultOptions() options {
	return options{logger: log.New(io.Discard, "", 0)}
}

// WithLogger sends engine logging to l. A nil logger has no effect.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgress registers fn to be called periodically from the goroutine running the engine, and once more on completion.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithCheckInvariants makes the engine validate every permutation it creates. Slow; meant for tests.
func WithCheckInvariants(check bool) Option {
	return func(o *options) {
		o.check = check
	}
}
