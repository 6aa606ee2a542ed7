package promptblocks

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	separator string
	resolver  BlockResolver
	logger    *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		separator: DefaultFragmentSeparator,
		resolver:  nil,
		logger:    nil,
	}
}

// WithFragmentSeparator sets the separator emitted between encoded and
// rendered fragments. Decoding does not depend on it.
// Default: one blank line ("\n\n")
func WithFragmentSeparator(sep string) Option {
	return func(c *engineConfig) {
		if sep != "" {
			c.separator = sep
		}
	}
}

// WithBlockResolver sets the resolver used to fetch canonical block bodies
// at render time.
// Default: nil (blocks render as empty)
func WithBlockResolver(r BlockResolver) Option {
	return func(c *engineConfig) {
		c.resolver = r
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
