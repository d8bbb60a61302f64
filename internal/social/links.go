package social

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// SubmitLink submits a link (t3_<n>) to an existing subreddit.
//
// Args: subreddit_id, title, author (required); url, selftext (optional,
// mutually exclusive).
func (s *Service) SubmitLink(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		subreddit := domain.CoerceString(args["subreddit_id"])
		if err := domain.NewPipeline().
			Require(
				RequireFullname("subreddit_id", KindSubreddit, args["subreddit_id"]),
				domain.RequireString("title", args["title"]),
				domain.RequireString("author", args["author"]),
				domain.OptionalString("url", args["url"]),
				domain.OptionalString("selftext", args["selftext"]),
			).
			Precondition(domain.MustExist(CollectionSubreddits, subreddit)).
			Run(tx); err != nil {
			return err
		}
		url := domain.CoerceString(args["url"])
		selftext := domain.CoerceString(args["selftext"])
		if url != "" && selftext != "" {
			return domain.ConflictError{
				Collection: CollectionLinks,
				ID:         "",
				Reason:     "a link carries either a url or selftext, not both",
			}
		}
		id := tx.NextFullname(CollectionLinks, KindLink)
		created = domain.Record{
			"id":           id,
			"subreddit_id": subreddit,
			"title":        domain.CoerceString(args["title"]),
			"author":       domain.CoerceString(args["author"]),
			"url":          url,
			"selftext":     selftext,
			"score":        float64(1),
			"created":      s.timestamp(),
		}
		tx.Put(CollectionLinks, id, created)
		return nil
	})
	s.observe("social.submit_link", start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetLink fetches a link by fullname.
func (s *Service) GetLink(ctx context.Context, id string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionLinks, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionLinks, ID: id}
		}
		return nil
	})
	s.observe("social.get_link", start, err)
	return rec, err
}

// DeleteLink removes a link and cascades to its comment tree.
func (s *Service) DeleteLink(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return s.engine.Delete(tx, CollectionLinks, id, nil)
	})
	s.observe("social.delete_link", start, err)
	return err
}

// ListLinks returns the links of one subreddit, ordered by fullname.
func (s *Service) ListLinks(ctx context.Context, subredditID string, page domain.Page) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if err := page.Validate(); err != nil {
			return err
		}
		if !view.Exists(CollectionSubreddits, subredditID) {
			return domain.NotFoundError{Collection: CollectionSubreddits, ID: subredditID}
		}
		var matched []domain.Record
		for _, rec := range view.List(CollectionLinks) {
			if rec["subreddit_id"] == subredditID {
				matched = append(matched, rec)
			}
		}
		lo, hi := page.Slice(len(matched))
		out = matched[lo:hi]
		return nil
	})
	s.observe("social.list_links", start, err)
	return out, err
}

// Vote applies a vote direction to a link or comment fullname. Direction must
// be -1, 0, or 1; the target's score moves by the direction (0 leaves it
// unchanged, matching a rescinded vote with no per-voter ledger).
func (s *Service) Vote(ctx context.Context, fullname string, direction int) (domain.Record, error) {
	start := time.Now()
	var updated domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if direction < -1 || direction > 1 {
			return domain.RangeError{Name: "direction", Value: direction, Bound: "-1, 0, or 1"}
		}
		kind, _, err := SplitFullname(fullname)
		if err != nil {
			return err
		}
		var c domain.Collection
		switch kind {
		case KindLink:
			c = CollectionLinks
		case KindComment:
			c = CollectionComments
		default:
			return domain.ShapeError{Name: "fullname", Want: "a t1 or t3 fullname", Got: fullname}
		}
		rec, ok := tx.Get(c, fullname)
		if !ok {
			return domain.NotFoundError{Collection: c, ID: fullname}
		}
		score, err := domain.CoerceInt("score", rec["score"])
		if err != nil {
			return err
		}
		rec["score"] = float64(score + direction)
		tx.Put(c, fullname, rec)
		updated = rec
		return nil
	})
	s.observe("social.vote", start, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}
