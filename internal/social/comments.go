package social

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// AddComment adds a comment (t1_<n>) under a link, or under another comment
// when parent_id names one. A reply's parent must belong to the same link.
//
// Args: link_id, author, body (required); parent_id (optional t1 fullname).
func (s *Service) AddComment(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		linkID := domain.CoerceString(args["link_id"])
		parentID := domain.CoerceString(args["parent_id"])
		pipeline := domain.NewPipeline().
			Require(
				RequireFullname("link_id", KindLink, args["link_id"]),
				domain.RequireString("author", args["author"]),
				domain.RequireString("body", args["body"]),
			).
			Precondition(domain.MustExist(CollectionLinks, linkID))
		if args["parent_id"] != nil && parentID != "" {
			pipeline.Require(RequireFullname("parent_id", KindComment, args["parent_id"]))
			pipeline.Precondition(domain.MustExist(CollectionComments, parentID))
		}
		if err := pipeline.Run(tx); err != nil {
			return err
		}
		if parentID != "" {
			parent, _ := tx.Get(CollectionComments, parentID)
			if parent["link_id"] != linkID {
				return domain.ConflictError{
					Collection: CollectionComments,
					ID:         parentID,
					Reason:     "parent comment belongs to a different link",
				}
			}
		}
		id := tx.NextFullname(CollectionComments, KindComment)
		created = domain.Record{
			"id":      id,
			"link_id": linkID,
			"author":  domain.CoerceString(args["author"]),
			"body":    domain.CoerceString(args["body"]),
			"score":   float64(1),
			"created": s.timestamp(),
		}
		if parentID != "" {
			created["parent_id"] = parentID
		}
		tx.Put(CollectionComments, id, created)
		return nil
	})
	s.observe("social.add_comment", start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetComment fetches a comment by fullname.
func (s *Service) GetComment(ctx context.Context, id string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionComments, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionComments, ID: id}
		}
		return nil
	})
	s.observe("social.get_comment", start, err)
	return rec, err
}

// DeleteComment removes a comment and drains its reply subtree.
func (s *Service) DeleteComment(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return s.engine.Delete(tx, CollectionComments, id, nil)
	})
	s.observe("social.delete_comment", start, err)
	return err
}

// ListComments returns the comments of one link, ordered by fullname, with
// optional paging.
func (s *Service) ListComments(ctx context.Context, linkID string, page domain.Page) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if err := page.Validate(); err != nil {
			return err
		}
		if !view.Exists(CollectionLinks, linkID) {
			return domain.NotFoundError{Collection: CollectionLinks, ID: linkID}
		}
		var matched []domain.Record
		for _, rec := range view.List(CollectionComments) {
			if rec["link_id"] == linkID {
				matched = append(matched, rec)
			}
		}
		lo, hi := page.Slice(len(matched))
		out = matched[lo:hi]
		return nil
	})
	s.observe("social.list_comments", start, err)
	return out, err
}
