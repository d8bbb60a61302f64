package social

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// CreateSubreddit creates a subreddit (t5_<n>). Display names are unique.
//
// Args: name (required), title, description (optional).
func (s *Service) CreateSubreddit(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		name := domain.CoerceString(args["name"])
		if err := domain.NewPipeline().
			Require(
				domain.RequireString("name", args["name"]),
				domain.OptionalString("title", args["title"]),
				domain.OptionalString("description", args["description"]),
			).
			Precondition(subredditNameFree(name)).
			Run(tx); err != nil {
			return err
		}
		title := domain.CoerceString(args["title"])
		if title == "" {
			title = name
		}
		id := tx.NextFullname(CollectionSubreddits, KindSubreddit)
		created = domain.Record{
			"id":          id,
			"name":        name,
			"title":       title,
			"description": domain.CoerceString(args["description"]),
			"subscribers": float64(0),
			"created":     s.timestamp(),
		}
		tx.Put(CollectionSubreddits, id, created)
		return nil
	})
	s.observe("social.create_subreddit", start, err)
	if err != nil {
		return nil, err
	}
	s.log.Info("subreddit created", "id", created["id"], "name", created["name"])
	return created, nil
}

// GetSubreddit fetches a subreddit by fullname.
func (s *Service) GetSubreddit(ctx context.Context, id string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionSubreddits, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionSubreddits, ID: id}
		}
		return nil
	})
	s.observe("social.get_subreddit", start, err)
	return rec, err
}

// FindSubredditByName scans for an exact display-name match.
func (s *Service) FindSubredditByName(ctx context.Context, name string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		for _, sub := range view.List(CollectionSubreddits) {
			if sub["name"] == name {
				rec = sub
				return nil
			}
		}
		return domain.NotFoundError{Collection: CollectionSubreddits, ID: name}
	})
	s.observe("social.find_subreddit", start, err)
	return rec, err
}

// DeleteSubreddit removes a subreddit and cascades through its links to their
// comments.
func (s *Service) DeleteSubreddit(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return s.engine.Delete(tx, CollectionSubreddits, id, nil)
	})
	s.observe("social.delete_subreddit", start, err)
	if err != nil {
		return err
	}
	s.log.Info("subreddit deleted", "id", id)
	return nil
}

// ListSubreddits returns subreddits ordered by fullname.
func (s *Service) ListSubreddits(ctx context.Context, page domain.Page) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if err := page.Validate(); err != nil {
			return err
		}
		all := view.List(CollectionSubreddits)
		lo, hi := page.Slice(len(all))
		out = all[lo:hi]
		return nil
	})
	s.observe("social.list_subreddits", start, err)
	return out, err
}

// subredditNameFree fails with AlreadyExistsError when the display name is
// taken.
func subredditNameFree(name string) domain.StateCheckFunc {
	return func(view domain.ReadView) error {
		for _, sub := range view.List(CollectionSubreddits) {
			if sub["name"] == name {
				return domain.AlreadyExistsError{Collection: CollectionSubreddits, Key: name}
			}
		}
		return nil
	}
}
