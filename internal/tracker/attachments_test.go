package tracker

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	blobmemory "simcore/internal/infra/blob/memory"
	"simcore/pkg/domain"
)

func TestAttachmentLifecycle(t *testing.T) {
	blobs := blobmemory.New()
	svc := newTestService(t, WithAttachments(blobs))
	ctx := context.Background()

	mustCreateProject(t, svc, "P")
	issueID := mustCreateIssue(t, svc, domain.Record{"project": "P", "summary": "s"})

	meta, err := svc.AddAttachment(ctx, issueID, "notes.txt", strings.NewReader("attachment body"), "text/plain")
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	attID := meta["id"].(string)
	if meta["size"] != int64(len("attachment body")) {
		t.Fatalf("size mismatch: %v", meta["size"])
	}

	issue, err := svc.GetIssue(ctx, issueID)
	if err != nil {
		t.Fatalf("get issue: %v", err)
	}
	listed := issue["attachments"].([]any)
	if len(listed) != 1 || listed[0].(map[string]any)["filename"] != "notes.txt" {
		t.Fatalf("metadata not on issue record: %v", listed)
	}

	info, rc, err := svc.OpenAttachment(ctx, issueID, attID)
	if err != nil {
		t.Fatalf("open attachment: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "attachment body" || info.ContentType != "text/plain" {
		t.Fatalf("payload round trip mismatch: %q %+v", body, info)
	}

	if err := svc.DeleteAttachment(ctx, issueID, attID); err != nil {
		t.Fatalf("delete attachment: %v", err)
	}
	var nf domain.NotFoundError
	if _, _, err := svc.OpenAttachment(ctx, issueID, attID); !errors.As(err, &nf) {
		t.Fatalf("deleted attachment still opens: %v", err)
	}
	issue, _ = svc.GetIssue(ctx, issueID)
	if listed := issue["attachments"].([]any); len(listed) != 0 {
		t.Fatalf("metadata survived delete: %v", listed)
	}
}

func TestAttachmentRequiresIssue(t *testing.T) {
	svc := newTestService(t, WithAttachments(blobmemory.New()))
	_, err := svc.AddAttachment(context.Background(), "ISSUE-404", "f", strings.NewReader("x"), "")
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAttachmentValidatesFilename(t *testing.T) {
	svc := newTestService(t, WithAttachments(blobmemory.New()))
	mustCreateProject(t, svc, "P")
	issueID := mustCreateIssue(t, svc, domain.Record{"project": "P", "summary": "s"})
	_, err := svc.AddAttachment(context.Background(), issueID, "   ", strings.NewReader("x"), "")
	var empty domain.EmptyOrMissingError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyOrMissingError, got %v", err)
	}
}
