package social

import (
	"time"

	"simcore/internal/observability"
	"simcore/pkg/domain"
)

// Collections managed by the social platform.
const (
	CollectionSubreddits = domain.Collection("subreddits")
	CollectionLinks      = domain.Collection("links")
	CollectionComments   = domain.Collection("comments")
)

// Service exposes the social operations over the shared store.
type Service struct {
	store   domain.Store
	engine  *domain.IntegrityEngine
	log     observability.Logger
	metrics observability.MetricsRecorder
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger wires a structured logger.
func WithLogger(log observability.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics wires a metrics recorder.
func WithMetrics(rec observability.MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a social service and registers the ownership chain:
// deleting a subreddit cascades to its links, deleting a link cascades to its
// comments, and deleting any comment drains its reply subtree.
func NewService(store domain.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		engine:  domain.NewIntegrityEngine(),
		log:     observability.NopLogger{},
		metrics: observability.NopRecorder{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.engine.Register(
		domain.Relationship{Parent: CollectionSubreddits, Child: CollectionLinks, RefField: "subreddit_id", Kind: domain.CascadeDelete},
		domain.Relationship{Parent: CollectionLinks, Child: CollectionComments, RefField: "link_id", Kind: domain.CascadeDelete},
		domain.Relationship{Parent: CollectionComments, Child: CollectionComments, RefField: "parent_id", Kind: domain.CascadeDelete},
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the relationship table (tests and diagnostics).
func (s *Service) Engine() *domain.IntegrityEngine { return s.engine }

func (s *Service) observe(op string, start time.Time, err error) {
	s.metrics.Observe(op, time.Since(start), err == nil)
	if err != nil {
		s.log.Debug("social operation failed", "operation", op, "error", err)
	}
}

func (s *Service) timestamp() string {
	return s.now().Format(time.RFC3339)
}
