// Package core wires the operation families over one shared store and exposes
// whole-state snapshot save/load.
package core

import (
	"context"

	"simcore/internal/blob"
	blobcore "simcore/internal/blob/core"
	"simcore/internal/infra/persistence/snapshotfile"
	"simcore/internal/observability"
	"simcore/internal/search"
	"simcore/internal/social"
	"simcore/internal/tracker"
	"simcore/pkg/domain"
)

// Service aggregates the tracker, social, and search services over a single
// store, so a cascade in one family and a query in another observe the same
// world.
type Service struct {
	store   domain.Store
	tracker *tracker.Service
	social  *social.Service
	search  *search.Service
}

// Config carries the optional collaborators of a Service.
type Config struct {
	Attachments blobcore.Store
	Logger      observability.Logger
	Metrics     observability.MetricsRecorder
}

// NewService constructs the facade over an existing store.
func NewService(store domain.Store, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NopRecorder{}
	}
	s := &Service{
		store: store,
		tracker: tracker.NewService(store,
			tracker.WithAttachments(cfg.Attachments),
			tracker.WithLogger(cfg.Logger),
			tracker.WithMetrics(cfg.Metrics),
		),
		social: social.NewService(store,
			social.WithLogger(cfg.Logger),
			social.WithMetrics(cfg.Metrics),
		),
		search: search.NewService(store, search.WithMetrics(cfg.Metrics)),
	}
	s.search.Register(
		search.Target{Collection: tracker.CollectionProjects, Fields: []string{"name", "description"}},
		search.Target{Collection: tracker.CollectionIssues, Fields: []string{"summary", "description"}},
		search.Target{Collection: social.CollectionLinks, Fields: []string{"title", "selftext"}},
		search.Target{Collection: social.CollectionComments, Fields: []string{"body"}},
	)
	return s
}

// Open builds a fully wired service from the environment: storage driver,
// attachment blob driver, and the default dataset.
func Open(ctx context.Context, cfg Config) (*Service, error) {
	store, err := OpenStore()
	if err != nil {
		return nil, err
	}
	if cfg.Attachments == nil {
		attachments, err := blob.OpenFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		cfg.Attachments = attachments
	}
	svc := NewService(store, cfg)
	if err := Seed(ctx, store); err != nil {
		return nil, err
	}
	return svc, nil
}

// Store returns the shared store.
func (s *Service) Store() domain.Store { return s.store }

// Tracker returns the issue-tracker operations.
func (s *Service) Tracker() *tracker.Service { return s.tracker }

// Social returns the social-platform operations.
func (s *Service) Social() *social.Service { return s.social }

// Search returns the search operations.
func (s *Service) Search() *search.Service { return s.search }

// SaveSnapshot writes the whole world to one JSON document.
func (s *Service) SaveSnapshot(path string) error {
	return snapshotfile.Save(path, s.store)
}

// LoadSnapshot restores the whole world from a snapshot document, replacing
// the store's contents in place.
func (s *Service) LoadSnapshot(path string) error {
	return snapshotfile.Load(path, s.store)
}
