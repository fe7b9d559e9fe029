package repository

import (
	"github.com/okian/lotus-ledger/pkg/logger"
)

// Option applies a configuration option to a store.
type Option func(*storeOptions)

type storeOptions struct {
	logger logger.Logger
}

// WithLogger sets the logger a store reports through.
func WithLogger(l logger.Logger) Option {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) storeOptions {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("repository")
	}
	return o
}
