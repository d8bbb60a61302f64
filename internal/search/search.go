// Package search implements a substring-scan search over declared text fields
// of declared collections. No index, no ranking; results come back in
// collection-then-identifier order.
package search

import (
	"context"
	"strings"
	"time"

	"simcore/internal/observability"
	"simcore/pkg/domain"
)

// Target declares one searchable collection and the text fields scanned in it.
type Target struct {
	Collection domain.Collection
	Fields     []string
}

// Hit is one matching record together with where it matched.
type Hit struct {
	Collection domain.Collection `json:"collection"`
	ID         string            `json:"id"`
	Field      string            `json:"field"`
	Record     domain.Record     `json:"record"`
}

// Service scans registered targets for case-insensitive substring matches.
type Service struct {
	store   domain.Store
	targets []Target
	metrics observability.MetricsRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics wires a metrics recorder.
func WithMetrics(rec observability.MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// NewService constructs a search service over the supplied store.
func NewService(store domain.Store, opts ...Option) *Service {
	s := &Service{store: store, metrics: observability.NopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds searchable targets. Registration order fixes the collection
// order of results.
func (s *Service) Register(targets ...Target) {
	s.targets = append(s.targets, targets...)
}

// Targets returns the registered targets in registration order.
func (s *Service) Targets() []Target {
	return append([]Target(nil), s.targets...)
}

// Search scans every registered target for records whose declared fields
// contain the query as a case-insensitive substring. A record matches at most
// once, on its first matching field. An empty or whitespace-only query fails
// with EmptyOrMissingError.
func (s *Service) Search(ctx context.Context, query string, page domain.Page) ([]Hit, error) {
	start := time.Now()
	var hits []Hit
	err := s.store.View(ctx, func(view domain.ReadView) error {
		needle := strings.ToLower(strings.TrimSpace(query))
		if needle == "" {
			return domain.EmptyOrMissingError{Name: "query"}
		}
		if err := page.Validate(); err != nil {
			return err
		}
		for _, target := range s.targets {
			for _, id := range view.IDs(target.Collection) {
				rec, ok := view.Get(target.Collection, id)
				if !ok {
					continue
				}
				for _, field := range target.Fields {
					text, ok := rec[field].(string)
					if !ok {
						continue
					}
					if strings.Contains(strings.ToLower(text), needle) {
						hits = append(hits, Hit{
							Collection: target.Collection,
							ID:         id,
							Field:      field,
							Record:     rec,
						})
						break
					}
				}
			}
		}
		lo, hi := page.Slice(len(hits))
		hits = hits[lo:hi]
		return nil
	})
	s.metrics.Observe("search.search", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	return hits, nil
}
