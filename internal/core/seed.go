package core

import (
	"context"

	"simcore/internal/social"
	"simcore/internal/tracker"
	"simcore/pkg/domain"
)

// Default vocabularies installed into a fresh world. Issues validate their
// type against issue_types and links validate against link_types, so both
// must exist before the first create.
var (
	defaultIssueTypes = []domain.Record{
		{"name": "Task", "description": "A task that needs to be done.", "subtask": false},
		{"name": "Bug", "description": "A problem which impairs or prevents the functions of the product.", "subtask": false},
		{"name": "Story", "description": "A user story.", "subtask": false},
		{"name": "Epic", "description": "A big user story that needs to be broken down.", "subtask": false},
		{"name": "Sub-task", "description": "The sub-task of the issue.", "subtask": true},
	}
	defaultLinkTypes = []domain.Record{
		{"name": "Blocks", "inward": "is blocked by", "outward": "blocks"},
		{"name": "Cloners", "inward": "is cloned by", "outward": "clones"},
		{"name": "Duplicate", "inward": "is duplicated by", "outward": "duplicates"},
		{"name": "Relates", "inward": "relates to", "outward": "relates to"},
	}
)

// Seed installs the default dataset into an empty world: issue and link type
// vocabularies, an admin user, and a starter subreddit. Collections that
// already hold records are left untouched, so reopening a persistent store
// never duplicates vocabulary entries.
func Seed(ctx context.Context, store domain.Store) error {
	return store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if len(tx.IDs(tracker.CollectionIssueTypes)) == 0 {
			for _, rec := range defaultIssueTypes {
				id := tx.NextID(tracker.CollectionIssueTypes, "TYPE")
				seeded := rec.Clone()
				seeded["id"] = id
				tx.Put(tracker.CollectionIssueTypes, id, seeded)
			}
		}
		if len(tx.IDs(tracker.CollectionLinkTypes)) == 0 {
			for _, rec := range defaultLinkTypes {
				id := tx.NextID(tracker.CollectionLinkTypes, "LTYPE")
				seeded := rec.Clone()
				seeded["id"] = id
				tx.Put(tracker.CollectionLinkTypes, id, seeded)
			}
		}
		if len(tx.IDs(tracker.CollectionUsers)) == 0 {
			id := tx.NewToken(tracker.CollectionUsers)
			tx.Put(tracker.CollectionUsers, id, domain.Record{
				"id":           id,
				"name":         "admin",
				"email":        "admin@example.com",
				"display_name": "Administrator",
				"active":       true,
			})
		}
		if len(tx.IDs(social.CollectionSubreddits)) == 0 {
			id := tx.NextFullname(social.CollectionSubreddits, social.KindSubreddit)
			tx.Put(social.CollectionSubreddits, id, domain.Record{
				"id":          id,
				"name":        "announcements",
				"title":       "Announcements",
				"description": "Official announcements.",
				"subscribers": float64(0),
				"created":     "1970-01-01T00:00:00Z",
			})
		}
		return nil
	})
}
