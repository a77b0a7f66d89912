// Package publisher emits audit events to the configured store and any extra
// sinks. Default mode is synchronous; an async buffer can be enabled where
// callers must not block on audit persistence.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	id "vims/pkg/domain"
	audit "vims/pkg/platform/audit"
	"vims/pkg/requestcontext"
)

// Sink receives a copy of every emitted event (e.g. a Kafka producer).
// Sink failures are logged, never surfaced to the business operation.
type Sink interface {
	Publish(ctx context.Context, event audit.Event) error
	Close() error
}

// Publisher fans audit events out to the store and sinks.
type Publisher struct {
	store  audit.Store
	sinks  []Sink
	logger *slog.Logger

	inbox  chan audit.Event
	wg     sync.WaitGroup
	closed sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches Emit to non-blocking delivery through a buffered
// channel drained by a background goroutine.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithSink adds an extra delivery target alongside the store.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithLogger sets a logger for sink and async failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an audit event, enriching it from the request context.
// In sync mode the store write happens on the caller's goroutine; in async
// mode the event is queued and Emit never blocks on persistence.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	if p.inbox != nil {
		select {
		case p.inbox <- event:
		default:
			p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		}
		return nil
	}
	return p.deliver(ctx, event)
}

// List returns the audit trail for a user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close drains the async buffer and closes all sinks.
func (p *Publisher) Close() error {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
		for _, sink := range p.sinks {
			if err := sink.Close(); err != nil {
				p.logger.Warn("audit sink close failed", "error", err)
			}
		}
	})
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	// Detached context: async delivery outlives the originating request.
	ctx := context.Background()
	for event := range p.inbox {
		if err := p.deliver(ctx, event); err != nil {
			p.logger.Error("audit event delivery failed", "action", event.Action, "error", err)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := sink.Publish(sinkCtx, event); err != nil {
			p.logger.Warn("audit sink publish failed", "action", event.Action, "error", err)
		}
		cancel()
	}
	return nil
}
