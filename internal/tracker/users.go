package tracker

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// CreateUser registers a user under a random token identifier. User names are
// unique.
//
// Args: name (required), email, display_name (optional).
func (s *Service) CreateUser(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		name := domain.CoerceString(args["name"])
		if err := domain.NewPipeline().
			Require(
				domain.RequireString("name", args["name"]),
				domain.OptionalString("email", args["email"]),
				domain.OptionalString("display_name", args["display_name"]),
			).
			Precondition(nameUnique(CollectionUsers, name)).
			Run(tx); err != nil {
			return err
		}
		display := domain.CoerceString(args["display_name"])
		if display == "" {
			display = name
		}
		id := tx.NewToken(CollectionUsers)
		created = domain.Record{
			"id":           id,
			"name":         name,
			"email":        domain.CoerceString(args["email"]),
			"display_name": display,
			"active":       true,
		}
		tx.Put(CollectionUsers, id, created)
		return nil
	})
	s.observe("tracker.create_user", start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetUser fetches a user by token id.
func (s *Service) GetUser(ctx context.Context, id string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionUsers, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionUsers, ID: id}
		}
		return nil
	})
	s.observe("tracker.get_user", start, err)
	return rec, err
}

// FindUserByName scans users for an exact name match.
func (s *Service) FindUserByName(ctx context.Context, name string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		for _, u := range view.List(CollectionUsers) {
			if u["name"] == name {
				rec = u
				return nil
			}
		}
		return domain.NotFoundError{Collection: CollectionUsers, ID: name}
	})
	s.observe("tracker.find_user", start, err)
	return rec, err
}

// DeleteUser removes a user record. Group member lists are not auto-cleaned;
// membership is recomputed by scan when read.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if !tx.Remove(CollectionUsers, id) {
			return domain.NotFoundError{Collection: CollectionUsers, ID: id}
		}
		return nil
	})
	s.observe("tracker.delete_user", start, err)
	return err
}

// ListUsers returns users ordered by token id.
func (s *Service) ListUsers(ctx context.Context, page domain.Page) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if err := page.Validate(); err != nil {
			return err
		}
		all := view.List(CollectionUsers)
		lo, hi := page.Slice(len(all))
		out = all[lo:hi]
		return nil
	})
	s.observe("tracker.list_users", start, err)
	return out, err
}
