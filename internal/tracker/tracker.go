// Package tracker implements the issue-tracker operation family: projects,
// components, issues, issue types, issue links, users, groups, dashboards,
// and issue attachments over the shared entity store.
package tracker

import (
	"time"

	blobcore "simcore/internal/blob/core"
	"simcore/internal/observability"
	"simcore/pkg/domain"
)

// Collections managed by the tracker.
const (
	CollectionProjects   = domain.Collection("projects")
	CollectionComponents = domain.Collection("components")
	CollectionIssues     = domain.Collection("issues")
	CollectionIssueTypes = domain.Collection("issue_types")
	CollectionIssueLinks = domain.Collection("issue_links")
	CollectionLinkTypes  = domain.Collection("link_types")
	CollectionUsers      = domain.Collection("users")
	CollectionGroups     = domain.Collection("groups")
	CollectionDashboards = domain.Collection("dashboards")
)

// Identifier prefixes for the sequential collections.
const (
	componentPrefix = "COMP"
	issuePrefix     = "ISSUE"
	linkPrefix      = "LINK"
	issueTypePrefix = "TYPE"
	dashboardPrefix = "DASH"
)

// Service exposes the tracker operations. All state flows through the shared
// store; attachments additionally stream payloads through the blob store.
type Service struct {
	store       domain.Store
	engine      *domain.IntegrityEngine
	attachments blobcore.Store
	log         observability.Logger
	metrics     observability.MetricsRecorder
	now         func() time.Time
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

// WithAttachments wires the attachment payload store.
func WithAttachments(store blobcore.Store) Option {
	return func(s *Service) { s.attachments = store }
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a tracker service over the supplied store and
// registers the tracker's relationship table with its integrity engine.
func NewService(store domain.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		engine:  domain.NewIntegrityEngine(),
		log:     observability.NopLogger{},
		metrics: observability.NopRecorder{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.engine.Register(
		domain.Relationship{Parent: CollectionProjects, Child: CollectionComponents, RefField: "project", Kind: domain.CascadeDelete},
		domain.Relationship{Parent: CollectionProjects, Child: CollectionIssues, RefField: "project", Kind: domain.CascadeDelete},
		domain.Relationship{Parent: CollectionComponents, Child: CollectionIssues, RefField: "components", Kind: domain.ReassignOrNull},
		domain.Relationship{Parent: CollectionIssues, Child: CollectionIssueLinks, RefField: "inward_issue", Kind: domain.CascadeDelete},
		domain.Relationship{Parent: CollectionIssues, Child: CollectionIssueLinks, RefField: "outward_issue", Kind: domain.CascadeDelete},
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the relationship table (tests and diagnostics).
func (s *Service) Engine() *domain.IntegrityEngine { return s.engine }

// observe records one completed operation.
func (s *Service) observe(op string, start time.Time, err error) {
	s.metrics.Observe(op, time.Since(start), err == nil)
	if err != nil {
		s.log.Debug("tracker operation failed", "operation", op, "error", err)
	}
}

func (s *Service) timestamp() string {
	return s.now().Format(time.RFC3339)
}
