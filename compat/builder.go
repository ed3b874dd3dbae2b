package compat

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/asynclog"
)

// Builder creates framework adapters that share one logger.
// It can use an existing *asynclog.Logger or create one from a *asynclog.Config.
type Builder struct {
	logger *asynclog.Logger
	logCfg *asynclog.Config
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing logger to use for the adapters.
// If this is set WithConfig is ignored.
func (b *Builder) WithLogger(l *asynclog.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("asynclog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new logger instance,
// used only if no logger was given via WithLogger
func (b *Builder) WithConfig(cfg *asynclog.Config) *Builder {
	b.logCfg = cfg
	return b
}

// getLogger resolves the logger to be used, creating and starting one if necessary
func (b *Builder) getLogger() (*asynclog.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.logger != nil {
		return b.logger, nil
	}

	l := asynclog.NewLogger()
	cfg := b.logCfg
	if cfg == nil {
		cfg = asynclog.DefaultConfig()
	}

	if err := l.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	if err := l.Start(); err != nil {
		return nil, err
	}

	// Cache the newly created logger for subsequent builds with this builder
	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// BuildZerolog creates a zerolog.Logger writing through the queue
func (b *Builder) BuildZerolog() (zerolog.Logger, error) {
	l, err := b.getLogger()
	if err != nil {
		return zerolog.Nop(), err
	}
	return NewZerolog(l), nil
}

// GetLogger returns the underlying logger, creating it if needed
func (b *Builder) GetLogger() (*asynclog.Logger, error) {
	return b.getLogger()
}
