package tracker

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// CreateDashboard creates a dashboard (DASH-<n>) owned by a named user.
//
// Args: name, owner (required), description (optional).
func (s *Service) CreateDashboard(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if err := domain.NewPipeline().
			Require(
				domain.RequireString("name", args["name"]),
				domain.RequireString("owner", args["owner"]),
				domain.OptionalString("description", args["description"]),
			).
			Run(tx); err != nil {
			return err
		}
		id := tx.NextID(CollectionDashboards, dashboardPrefix)
		created = domain.Record{
			"id":          id,
			"name":        domain.CoerceString(args["name"]),
			"owner":       domain.CoerceString(args["owner"]),
			"description": domain.CoerceString(args["description"]),
		}
		tx.Put(CollectionDashboards, id, created)
		return nil
	})
	s.observe("tracker.create_dashboard", start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetDashboard fetches a dashboard by id.
func (s *Service) GetDashboard(ctx context.Context, id string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionDashboards, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionDashboards, ID: id}
		}
		return nil
	})
	s.observe("tracker.get_dashboard", start, err)
	return rec, err
}

// DeleteDashboard removes a dashboard.
func (s *Service) DeleteDashboard(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if !tx.Remove(CollectionDashboards, id) {
			return domain.NotFoundError{Collection: CollectionDashboards, ID: id}
		}
		return nil
	})
	s.observe("tracker.delete_dashboard", start, err)
	return err
}

// ListDashboards returns dashboards ordered by id with offset/limit paging.
// Negative bounds fail with RangeError before any clamping.
func (s *Service) ListDashboards(ctx context.Context, page domain.Page) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if err := page.Validate(); err != nil {
			return err
		}
		all := view.List(CollectionDashboards)
		lo, hi := page.Slice(len(all))
		out = all[lo:hi]
		return nil
	})
	s.observe("tracker.list_dashboards", start, err)
	return out, err
}
