package tracker

import (
	"context"
	"time"

	"simcore/pkg/domain"
)

// Issue field defaults applied at creation time.
const (
	defaultIssueType = "Task"
	defaultPriority  = "Low"
	defaultStatus    = "Open"
	defaultAssignee  = "Unassigned"
)

// CreateIssue creates an issue (ISSUE-<n>) under an existing project.
//
// Args: project, summary (required); description, issuetype, priority,
// assignee, due_date, parent (optional); components (optional list of
// component ids). The issue type must be a registered issue-type name, a
// parent must be an existing issue, and every component must exist.
func (s *Service) CreateIssue(ctx context.Context, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var created domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		project := domain.CoerceString(args["project"])
		components := domain.CoerceStringList(args["components"])
		issueType := domain.CoerceString(args["issuetype"])
		if issueType == "" {
			issueType = defaultIssueType
		}
		parent := domain.CoerceString(args["parent"])

		pipeline := domain.NewPipeline().
			Require(
				domain.RequireString("project", args["project"]),
				domain.RequireString("summary", args["summary"]),
				domain.OptionalString("description", args["description"]),
				domain.OptionalString("issuetype", args["issuetype"]),
				domain.OptionalString("priority", args["priority"]),
				domain.OptionalString("assignee", args["assignee"]),
				domain.OptionalString("due_date", args["due_date"]),
				domain.OptionalString("parent", args["parent"]),
				domain.RequireStringList("components", args["components"]),
				requireDate("due_date", args["due_date"]),
			).
			Precondition(
				domain.MustExist(CollectionProjects, project),
				issueTypeRegistered(issueType),
			)
		if parent != "" {
			pipeline.Precondition(domain.MustExist(CollectionIssues, parent))
		}
		for _, comp := range components {
			pipeline.Precondition(domain.MustExist(CollectionComponents, comp))
		}
		if err := pipeline.Run(tx); err != nil {
			return err
		}

		assignee := domain.CoerceString(args["assignee"])
		if assignee == "" {
			assignee = defaultAssignee
		}
		priority := domain.CoerceString(args["priority"])
		if priority == "" {
			priority = defaultPriority
		}
		id := tx.NextID(CollectionIssues, issuePrefix)
		created = domain.Record{
			"id":          id,
			"project":     project,
			"summary":     domain.CoerceString(args["summary"]),
			"description": domain.CoerceString(args["description"]),
			"issuetype":   issueType,
			"priority":    priority,
			"status":      defaultStatus,
			"assignee":    map[string]any{"name": assignee},
			"components":  toAnyList(components),
			"created":     s.timestamp(),
			"updated":     s.timestamp(),
		}
		if due := domain.CoerceString(args["due_date"]); due != "" {
			created["due_date"] = due
		}
		if parent != "" {
			created["parent"] = parent
		}
		tx.Put(CollectionIssues, id, created)
		return nil
	})
	s.observe("tracker.create_issue", start, err)
	if err != nil {
		return nil, err
	}
	s.log.Info("issue created", "id", created["id"], "project", created["project"])
	return created, nil
}

// GetIssue fetches an issue by id.
func (s *Service) GetIssue(ctx context.Context, id string) (domain.Record, error) {
	start := time.Now()
	var rec domain.Record
	err := s.store.View(ctx, func(view domain.ReadView) error {
		var ok bool
		rec, ok = view.Get(CollectionIssues, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionIssues, ID: id}
		}
		return nil
	})
	s.observe("tracker.get_issue", start, err)
	return rec, err
}

// UpdateIssue mutates issue fields in place. Identifier, project, and creation
// timestamp are immutable; everything else supplied in args is rewritten.
//
// Args: summary, description, issuetype, priority, status, assignee, due_date
// (optional strings); components (optional list of existing component ids).
func (s *Service) UpdateIssue(ctx context.Context, id string, args domain.Record) (domain.Record, error) {
	start := time.Now()
	var updated domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		components := domain.CoerceStringList(args["components"])
		issueType := domain.CoerceString(args["issuetype"])

		pipeline := domain.NewPipeline().
			Require(
				domain.OptionalString("summary", args["summary"]),
				domain.OptionalString("description", args["description"]),
				domain.OptionalString("issuetype", args["issuetype"]),
				domain.OptionalString("priority", args["priority"]),
				domain.OptionalString("status", args["status"]),
				domain.OptionalString("assignee", args["assignee"]),
				domain.OptionalString("due_date", args["due_date"]),
				domain.RequireStringList("components", args["components"]),
				requireDate("due_date", args["due_date"]),
			).
			Precondition(domain.MustExist(CollectionIssues, id))
		if issueType != "" {
			pipeline.Precondition(issueTypeRegistered(issueType))
		}
		if args["components"] != nil {
			for _, comp := range components {
				pipeline.Precondition(domain.MustExist(CollectionComponents, comp))
			}
		}
		if err := pipeline.Run(tx); err != nil {
			return err
		}

		rec, _ := tx.Get(CollectionIssues, id)
		for _, field := range []string{"summary", "description", "issuetype", "priority", "status", "due_date"} {
			if v, ok := args[field]; ok && v != nil {
				rec[field] = domain.CoerceString(v)
			}
		}
		if v, ok := args["assignee"]; ok && v != nil {
			rec["assignee"] = map[string]any{"name": domain.CoerceString(v)}
		}
		if args["components"] != nil {
			rec["components"] = toAnyList(components)
		}
		rec["updated"] = s.timestamp()
		tx.Put(CollectionIssues, id, rec)
		updated = rec
		return nil
	})
	s.observe("tracker.update_issue", start, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteIssue removes an issue and its links. When sub-tasks reference the
// issue as parent, deletion fails with ConflictError unless deleteSubtasks is
// set, in which case the sub-tasks are removed too.
func (s *Service) DeleteIssue(ctx context.Context, id string, deleteSubtasks bool) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if !tx.Exists(CollectionIssues, id) {
			return domain.NotFoundError{Collection: CollectionIssues, ID: id}
		}
		var subtasks []string
		for _, childID := range tx.IDs(CollectionIssues) {
			child, ok := tx.Get(CollectionIssues, childID)
			if ok && child["parent"] == id {
				subtasks = append(subtasks, childID)
			}
		}
		if len(subtasks) > 0 && !deleteSubtasks {
			return domain.ConflictError{
				Collection: CollectionIssues,
				ID:         id,
				Reason:     "issue has sub-tasks; pass deleteSubtasks to remove them",
			}
		}
		for _, sub := range subtasks {
			if err := s.engine.Delete(tx, CollectionIssues, sub, nil); err != nil {
				return err
			}
		}
		return s.engine.Delete(tx, CollectionIssues, id, nil)
	})
	s.observe("tracker.delete_issue", start, err)
	if err != nil {
		return err
	}
	s.log.Info("issue deleted", "id", id, "subtasks", deleteSubtasks)
	return nil
}

// ListIssues returns the issues of one project, ordered by id.
func (s *Service) ListIssues(ctx context.Context, project string, page domain.Page) ([]domain.Record, error) {
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
		for _, rec := range view.List(CollectionIssues) {
			if rec["project"] == project {
				matched = append(matched, rec)
			}
		}
		lo, hi := page.Slice(len(matched))
		out = matched[lo:hi]
		return nil
	})
	s.observe("tracker.list_issues", start, err)
	return out, err
}

// AssignIssue repoints the issue's assignee. An empty name resets it to the
// unassigned placeholder.
func (s *Service) AssignIssue(ctx context.Context, id, assignee string) (domain.Record, error) {
	start := time.Now()
	var updated domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		rec, ok := tx.Get(CollectionIssues, id)
		if !ok {
			return domain.NotFoundError{Collection: CollectionIssues, ID: id}
		}
		name := domain.CoerceString(assignee)
		if name == "" {
			name = defaultAssignee
		}
		rec["assignee"] = map[string]any{"name": name}
		rec["updated"] = s.timestamp()
		tx.Put(CollectionIssues, id, rec)
		updated = rec
		return nil
	})
	s.observe("tracker.assign_issue", start, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// issueTypeRegistered checks that name matches a registered issue type.
func issueTypeRegistered(name string) domain.StateCheckFunc {
	return func(view domain.ReadView) error {
		for _, rec := range view.List(CollectionIssueTypes) {
			if rec["name"] == name {
				return nil
			}
		}
		return domain.NotFoundError{Collection: CollectionIssueTypes, ID: name}
	}
}

// requireDate accepts an optional YYYY-MM-DD string.
func requireDate(name string, v any) domain.CheckFunc {
	return func() error {
		if v == nil {
			return nil
		}
		str, ok := v.(string)
		if !ok {
			return domain.ShapeError{Name: name, Want: "a string", Got: v}
		}
		str = domain.CoerceString(str)
		if str == "" {
			return nil
		}
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return domain.ShapeError{Name: name, Want: "a YYYY-MM-DD date", Got: v}
		}
		return nil
	}
}

// toAnyList converts a string slice to the []any shape records round-trip as.
func toAnyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
