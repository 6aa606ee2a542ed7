package promptblocks

import (
	"go.uber.org/zap"
)

// Engine bundles the storage codec, the snapshot renderer, and format
// diagnostics behind one configuration. Every call is stateless and
// synchronous; the engine holds no per-document state and provides no
// locking. Callers own the single-writer discipline for each Document
// (one active editing session per document).
type Engine struct {
	config *engineConfig
	logger *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		config: config,
		logger: logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// ValidateStorageFormat runs the pre-flight format diagnostics with the
// engine's configuration. See the package-level ValidateStorageFormat.
func (e *Engine) ValidateStorageFormat(text string) *FormatValidationResult {
	return ValidateStorageFormat(text)
}
