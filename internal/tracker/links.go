package tracker

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// CreateIssueLink links two existing issues (LINK-<n>). The link type must be
// one of the registered link-type names (Blocks, Cloners, Duplicate, Relates
// in the default dataset).
//
// Args: type, inward_issue, outward_issue (required).
func (s *Service) CreateIssueLink(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		linkType := domain.CoerceString(args["type"])
		inward := domain.CoerceString(args["inward_issue"])
		outward := domain.CoerceString(args["outward_issue"])
		if err := domain.NewPipeline().
			Require(
				domain.RequireString("type", args["type"]),
				domain.RequireString("inward_issue", args["inward_issue"]),
				domain.RequireString("outward_issue", args["outward_issue"]),
			).
			Precondition(
				linkTypeRegistered(linkType),
				domain.MustExist(CollectionIssues, inward),
				domain.MustExist(CollectionIssues, outward),
			).
			Run(tx); err != nil {
			return err
		}
		if inward == outward {
			return domain.ConflictError{
				Collection: CollectionIssues,
				ID:         inward,
				Reason:     "an issue cannot be linked to itself",
			}
		}
		id := tx.NextID(CollectionIssueLinks, linkPrefix)
		created = domain.Record{
			"id":            id,
			"type":          linkType,
			"inward_issue":  inward,
			"outward_issue": outward,
		}
		tx.Put(CollectionIssueLinks, id, created)
		return nil
	})
	s.observe("tracker.create_issue_link", start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetIssueLink fetches a link by id.
func (s *Service) GetIssueLink(ctx context.Context, id string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionIssueLinks, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionIssueLinks, ID: id}
		}
		return nil
	})
	s.observe("tracker.get_issue_link", start, err)
	return rec, err
}

// DeleteIssueLink removes a link. The linked issues are untouched.
func (s *Service) DeleteIssueLink(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if !tx.Remove(CollectionIssueLinks, id) {
			return domain.NotFoundError{Collection: CollectionIssueLinks, ID: id}
		}
		return nil
	})
	s.observe("tracker.delete_issue_link", start, err)
	return err
}

// ListIssueLinks returns every link touching the issue, ordered by link id.
func (s *Service) ListIssueLinks(ctx context.Context, issueID string) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if !view.Exists(CollectionIssues, issueID) {
			return domain.NotFoundError{Collection: CollectionIssues, ID: issueID}
		}
		for _, rec := range view.List(CollectionIssueLinks) {
			if rec["inward_issue"] == issueID || rec["outward_issue"] == issueID {
				out = append(out, rec)
			}
		}
		return nil
	})
	s.observe("tracker.list_issue_links", start, err)
	return out, err
}

// CreateIssueType registers a new issue type (TYPE-<n>). Names are unique.
//
// Args: name (required), description (optional), subtask (optional bool).
func (s *Service) CreateIssueType(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		name := domain.CoerceString(args["name"])
		if err := domain.NewPipeline().
			Require(
				domain.RequireString("name", args["name"]),
				domain.OptionalString("description", args["description"]),
			).
			Precondition(nameUnique(CollectionIssueTypes, name)).
			Run(tx); err != nil {
			return err
		}
		subtask, _ := args["subtask"].(bool)
		id := tx.NextID(CollectionIssueTypes, issueTypePrefix)
		created = domain.Record{
			"id":          id,
			"name":        name,
			"description": domain.CoerceString(args["description"]),
			"subtask":     subtask,
		}
		tx.Put(CollectionIssueTypes, id, created)
		return nil
	})
	s.observe("tracker.create_issue_type", start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListIssueTypes returns every registered issue type, ordered by id.
func (s *Service) ListIssueTypes(ctx context.Context) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		out = view.List(CollectionIssueTypes)
		return nil
	})
	s.observe("tracker.list_issue_types", start, err)
	return out, err
}

// ListLinkTypes returns the link-type vocabulary, ordered by id.
func (s *Service) ListLinkTypes(ctx context.Context) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		out = view.List(CollectionLinkTypes)
		return nil
	})
	s.observe("tracker.list_link_types", start, err)
	return out, err
}

// linkTypeRegistered checks that name matches a registered link type.
func linkTypeRegistered(name string) domain.StateCheckFunc {
	return func(view domain.ReadView) error {
		for _, rec := range view.List(CollectionLinkTypes) {
			if rec["name"] == name {
				return nil
			}
		}
		return domain.NotFoundError{Collection: CollectionLinkTypes, ID: name}
	}
}

// nameUnique fails with AlreadyExistsError when any record in the collection
// already carries the name.
func nameUnique(c domain.Collection, name string) domain.StateCheckFunc {
	return func(view domain.ReadView) error {
		for _, rec := range view.List(c) {
			if rec["name"] == name {
				return domain.AlreadyExistsError{Collection: c, Key: name}
			}
		}
		return nil
	}
}
