package kbi

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/scrypster/kbbridge/pkg/types"
)

// Client is the knowledge base facade. It is not safe for concurrent use.
type Client struct {
	svc    KnowledgeService
	docs   DocumentStore
	logger *zap.Logger

	registry   map[string]PayloadType           // instance type -> payload type
	predicates map[string]types.DomainPredicate // domain predicate cache

	// closers are released by Close, in reverse order. Only Open sets them.
	closers []io.Closer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client over svc and docs. The caller keeps ownership of
// both; Close does not close them.
func New(svc KnowledgeService, docs DocumentStore, opts ...Option) *Client {
	c := &Client{
		svc:        svc,
		docs:       docs,
		logger:     zap.NewNop(),
		registry:   make(map[string]PayloadType),
		predicates: make(map[string]types.DomainPredicate),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the transports and stores created by Open.
func (c *Client) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	_ = c.logger.Sync()
	return errors.Join(errs...)
}
