package tracker

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// CreateGroup creates a group under a random token identifier with an empty
// member list. Group names are unique.
//
// Args: name (required).
func (s *Service) CreateGroup(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		name := domain.CoerceString(args["name"])
		if err := domain.NewPipeline().
			Require(domain.RequireString("name", args["name"])).
			Precondition(nameUnique(CollectionGroups, name)).
			Run(tx); err != nil {
			return err
		}
		id := tx.NewToken(CollectionGroups)
		created = domain.Record{
			"id":      id,
			"name":    name,
			"members": []any{},
		}
		tx.Put(CollectionGroups, id, created)
		return nil
	})
	s.observe("tracker.create_group", start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetGroupByName scans groups for an exact name match.
func (s *Service) GetGroupByName(ctx context.Context, name string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		for _, g := range view.List(CollectionGroups) {
			if g["name"] == name {
				rec = g
				return nil
			}
		}
		return domain.NotFoundError{Collection: CollectionGroups, ID: name}
	})
	s.observe("tracker.get_group", start, err)
	return rec, err
}

// AddGroupMember appends a user name to the group's member list. The user, by
// name, must exist; re-adding a present member fails with ConflictError.
func (s *Service) AddGroupMember(ctx context.Context, groupID, userName string) (domain.Record, error) {
	start := time.Now()
	var updated domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		rec, ok := tx.Get(CollectionGroups, groupID)
		if !ok {
			return domain.NotFoundError{Collection: CollectionGroups, ID: groupID}
		}
		if !userNameExists(tx, userName) {
			return domain.NotFoundError{Collection: CollectionUsers, ID: userName}
		}
		members := domain.CoerceStringList(rec["members"])
		for _, m := range members {
			if m == userName {
				return domain.ConflictError{
					Collection: CollectionGroups,
					ID:         groupID,
					Reason:     "user is already a member",
				}
			}
		}
		rec["members"] = toAnyList(append(members, userName))
		tx.Put(CollectionGroups, groupID, rec)
		updated = rec
		return nil
	})
	s.observe("tracker.add_group_member", start, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveGroupMember removes a user name from the group's member list.
func (s *Service) RemoveGroupMember(ctx context.Context, groupID, userName string) (domain.Record, error) {
	start := time.Now()
	var updated domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		rec, ok := tx.Get(CollectionGroups, groupID)
		if !ok {
			return domain.NotFoundError{Collection: CollectionGroups, ID: groupID}
		}
		members := domain.CoerceStringList(rec["members"])
		kept := make([]string, 0, len(members))
		found := false
		for _, m := range members {
			if m == userName {
				found = true
				continue
			}
			kept = append(kept, m)
		}
		if !found {
			return domain.NotFoundError{Collection: CollectionUsers, ID: userName}
		}
		rec["members"] = toAnyList(kept)
		tx.Put(CollectionGroups, groupID, rec)
		updated = rec
		return nil
	})
	s.observe("tracker.remove_group_member", start, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteGroup removes a group. Nothing references groups by id, so no cascade
// fires.
func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if !tx.Remove(CollectionGroups, id) {
			return domain.NotFoundError{Collection: CollectionGroups, ID: id}
		}
		return nil
	})
	s.observe("tracker.delete_group", start, err)
	return err
}

// GroupsOfUser recomputes the user's memberships by scanning every group's
// member list. No reverse index exists.
func (s *Service) GroupsOfUser(ctx context.Context, userName string) ([]domain.Record, error) {
	start := time.Now()
	var out []domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		for _, g := range view.List(CollectionGroups) {
			for _, m := range domain.CoerceStringList(g["members"]) {
				if m == userName {
					out = append(out, g)
					break
				}
			}
		}
		return nil
	})
	s.observe("tracker.groups_of_user", start, err)
	return out, err
}

func userNameExists(view domain.ReadView, name string) bool {
	for _, u := range view.List(CollectionUsers) {
		if u["name"] == name {
			return true
		}
	}
	return false
}
