package tracker

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// CreateComponent creates a component (COMP-<n>) owned by an existing project.
//
// Args: name, project (required), description, lead (optional).
func (s *Service) CreateComponent(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		project := domain.CoerceString(args["project"])
		if err := domain.NewPipeline().
			Require(
				domain.RequireString("name", args["name"]),
				domain.RequireString("project", args["project"]),
				domain.OptionalString("description", args["description"]),
				domain.OptionalString("lead", args["lead"]),
			).
			Precondition(domain.MustExist(CollectionProjects, project)).
			Run(tx); err != nil {
			return err
		}
		id := tx.NextID(CollectionComponents, componentPrefix)
		created = domain.Record{
			"id":          id,
			"name":        domain.CoerceString(args["name"]),
			"project":     project,
			"description": domain.CoerceString(args["description"]),
			"lead":        domain.CoerceString(args["lead"]),
		}
		tx.Put(CollectionComponents, id, created)
		return nil
	})
	s.observe("tracker.create_component", start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetComponent fetches a component by id.
func (s *Service) GetComponent(ctx context.Context, id string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionComponents, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionComponents, ID: id}
		}
		return nil
	})
	s.observe("tracker.get_component", start, err)
	return rec, err
}

// DeleteComponent removes a component. When moveIssuesTo names a replacement
// component, every issue listing the deleted component is rewritten to the
// replacement; the replacement must exist and belong to the same project.
// Without a replacement, referencing issues keep a dangling entry.
func (s *Service) DeleteComponent(ctx context.Context, id string, moveIssuesTo string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var replacement *string
		if moveIssuesTo != "" {
			target, ok := tx.Get(CollectionComponents, moveIssuesTo)
			if !ok {
				return domain.NotFoundError{Collection: CollectionComponents, ID: moveIssuesTo}
			}
			source, ok := tx.Get(CollectionComponents, id)
			if !ok {
				return domain.NotFoundError{Collection: CollectionComponents, ID: id}
			}
			if target["project"] != source["project"] {
				return domain.ConflictError{
					Collection: CollectionComponents,
					ID:         moveIssuesTo,
					Reason:     "replacement component belongs to a different project",
				}
			}
			replacement = &moveIssuesTo
		}
		return s.engine.Delete(tx, CollectionComponents, id, replacement)
	})
	s.observe("tracker.delete_component", start, err)
	return err
}

// ListComponents returns the components of one project, ordered by id.
func (s *Service) ListComponents(ctx context.Context, project string, page domain.Page) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if err := page.Validate(); err != nil {
			return err
		}
		if !view.Exists(CollectionProjects, project) {
			return domain.NotFoundError{Collection: CollectionProjects, ID: project}
		}
		var matched []domain.Record
		for _, rec := range view.List(CollectionComponents) {
			if rec["project"] == project {
				matched = append(matched, rec)
			}
		}
		lo, hi := page.Slice(len(matched))
		out = matched[lo:hi]
		return nil
	})
	s.observe("tracker.list_components", start, err)
	return out, err
}
