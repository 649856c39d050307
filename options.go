package life

import "log/slog"

// Option configures a Session or MainLoop during creation.
//
// Example:
//
//	s, err := life.NewSession(dev,
//		life.WithSeed(life.RandomSeed{Density: 0.3}),
//		life.WithMaxFrames(1000))
type Option func(*options)

type options struct {
	config    Config
	seed      Seed
	logger    *slog.Logger
	observer  Observer
	maxFrames uint64
	passes    []Pass
}

func defaultOptions() options {
	return options{
		config: DefaultConfig(),
		seed:   EmptySeed{},
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}

// WithConfig replaces the default configuration.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.config = c
	}
}

// WithSeed sets the initial contents of the current generation. The
// default is an empty grid.
func WithSeed(s Seed) Option {
	return func(o *options) {
		if s != nil {
			o.seed = s
		}
	}
}

// WithLogger sets a logger for this session instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver receives pass timings, frame timings and state changes.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithMaxFrames terminates the loop after n presented frames. Zero means
// no limit.
func WithMaxFrames(n uint64) Option {
	return func(o *options) {
		o.maxFrames = n
	}
}

// WithPasses appends passes that run after the built-in ones each frame.
func WithPasses(p ...Pass) Option {
	return func(o *options) {
		o.passes = append(o.passes, p...)
	}
}
