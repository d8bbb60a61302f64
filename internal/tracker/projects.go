package tracker

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// CreateProject creates a project keyed by its project key. Keys are unique;
// a duplicate create fails with AlreadyExistsError.
//
// Args: key, name (required), lead, description (optional).
func (s *Service) CreateProject(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		key := domain.CoerceString(args["key"])
		if err := domain.NewPipeline().
			Require(
				domain.RequireString("key", args["key"]),
				domain.RequireString("name", args["name"]),
				domain.OptionalString("lead", args["lead"]),
				domain.OptionalString("description", args["description"]),
			).
			Precondition(domain.MustNotExist(CollectionProjects, key)).
			Run(tx); err != nil {
			return err
		}
		created = domain.Record{
			"key":         key,
			"name":        domain.CoerceString(args["name"]),
			"lead":        domain.CoerceString(args["lead"]),
			"description": domain.CoerceString(args["description"]),
			"created":     s.timestamp(),
		}
		tx.Put(CollectionProjects, key, created)
		return nil
	})
	s.observe("tracker.create_project", start, err)
	if err != nil {
		return nil, err
	}
	s.log.Info("project created", "key", created["key"])
	return created, nil
}

// GetProject fetches a project by key.
func (s *Service) GetProject(ctx context.Context, key string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionProjects, key)
		if !ok {
			return domain.NotFoundError{Collection: CollectionProjects, ID: key}
		}
		return nil
	})
	s.observe("tracker.get_project", start, err)
	return rec, err
}

// UpdateProject mutates a project's descriptive fields in place. The key is
// immutable.
//
// Args: name, lead, description (all optional).
func (s *Service) UpdateProject(ctx context.Context, key string, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var updated domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if err := domain.NewPipeline().
			Require(
				domain.OptionalString("name", args["name"]),
				domain.OptionalString("lead", args["lead"]),
				domain.OptionalString("description", args["description"]),
			).
			Precondition(domain.MustExist(CollectionProjects, key)).
			Run(tx); err != nil {
			return err
		}
		rec, _ := tx.Get(CollectionProjects, key)
		for _, field := range []string{"name", "lead", "description"} {
			if v, ok := args[field]; ok && v != nil {
				rec[field] = domain.CoerceString(v)
			}
		}
		tx.Put(CollectionProjects, key, rec)
		updated = rec
		return nil
	})
	s.observe("tracker.update_project", start, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProject removes a project and cascades to its components and issues.
func (s *Service) DeleteProject(ctx context.Context, key string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return s.engine.Delete(tx, CollectionProjects, key, nil)
	})
	s.observe("tracker.delete_project", start, err)
	if err != nil {
		return err
	}
	s.log.Info("project deleted", "key", key)
	return nil
}

// ListProjects returns projects ordered by key.
func (s *Service) ListProjects(ctx context.Context, page domain.Page) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if err := page.Validate(); err != nil {
			return err
		}
		all := view.List(CollectionProjects)
		lo, hi := page.Slice(len(all))
		out = all[lo:hi]
		return nil
	})
	s.observe("tracker.list_projects", start, err)
	return out, err
}
