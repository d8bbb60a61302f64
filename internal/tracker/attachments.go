package tracker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	blobcore "simcore/internal/blob/core"
	"simcore/pkg/domain"
)

// attachmentKey is the blob key layout for issue attachment payloads.
func attachmentKey(issueID, attachmentID string) string {
	return fmt.Sprintf("issues/%s/%s", issueID, attachmentID)
}

// AddAttachment streams an attachment payload into the blob store and appends
// its metadata to the issue's attachment list. Requires a configured
// attachment store.
func (s *Service) AddAttachment(ctx context.Context, issueID, filename string, r io.Reader, contentType string) (domain.Record, error) {
	start := time.Now()
	var meta domain.Record
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if s.attachments == nil {
			return blobcore.ErrUnsupported
		}
		if err := domain.NewPipeline().
			Require(domain.RequireString("filename", filename)).
			Precondition(domain.MustExist(CollectionIssues, issueID)).
			Run(tx); err != nil {
			return err
		}
		attachmentID := uuid.NewString()
		info, err := s.attachments.Put(ctx, attachmentKey(issueID, attachmentID), r, blobcore.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"filename": filename},
		})
		if err != nil {
			return fmt.Errorf("store attachment payload: %w", err)
		}
		meta = domain.Record{
			"id":           attachmentID,
			"filename":     domain.CoerceString(filename),
			"content_type": contentType,
			"size":         info.Size,
			"created":      s.timestamp(),
		}
		rec, _ := tx.Get(CollectionIssues, issueID)
		existing, _ := rec["attachments"].([]any)
		rec["attachments"] = append(existing, map[string]any(meta.Clone()))
		tx.Put(CollectionIssues, issueID, rec)
		return nil
	})
	s.observe("tracker.add_attachment", start, err)
	if err != nil {
		return nil, err
	}
	s.log.Info("attachment stored", "issue", issueID, "id", meta["id"])
	return meta, nil
}

// OpenAttachment returns the payload stream and stored info for an attachment.
// The caller closes the reader.
func (s *Service) OpenAttachment(ctx context.Context, issueID, attachmentID string) (blobcore.Info, io.ReadCloser, error) {
	start := time.Now()
	if s.attachments == nil {
		return blobcore.Info{}, nil, blobcore.ErrUnsupported
	}
	checkErr := s.store.View(ctx, func(view domain.ReadView) error {
		if !attachmentListed(view, issueID, attachmentID) {
			return domain.NotFoundError{Collection: CollectionIssues, ID: issueID}
		}
		return nil
	})
	if checkErr != nil {
		s.observe("tracker.open_attachment", start, checkErr)
		return blobcore.Info{}, nil, checkErr
	}
	info, rc, err := s.attachments.Get(ctx, attachmentKey(issueID, attachmentID))
	s.observe("tracker.open_attachment", start, err)
	return info, rc, err
}

// DeleteAttachment drops the payload and removes the metadata entry from the
// issue record.
func (s *Service) DeleteAttachment(ctx context.Context, issueID, attachmentID string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if s.attachments == nil {
			return blobcore.ErrUnsupported
		}
		rec, ok := tx.Get(CollectionIssues, issueID)
		if !ok {
			return domain.NotFoundError{Collection: CollectionIssues, ID: issueID}
		}
		existing, _ := rec["attachments"].([]any)
		kept := make([]any, 0, len(existing))
		found := false
		for _, e := range existing {
			m, _ := e.(map[string]any)
			if m != nil && m["id"] == attachmentID {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		if !found {
			return domain.NotFoundError{Collection: CollectionIssues, ID: attachmentID}
		}
		if _, err := s.attachments.Delete(ctx, attachmentKey(issueID, attachmentID)); err != nil {
			return fmt.Errorf("delete attachment payload: %w", err)
		}
		rec["attachments"] = kept
		tx.Put(CollectionIssues, issueID, rec)
		return nil
	})
	s.observe("tracker.delete_attachment", start, err)
	return err
}

// AttachmentURL returns a pre-signed download URL when the backend supports
// signing, or blobcore.ErrUnsupported when it does not.
func (s *Service) AttachmentURL(ctx context.Context, issueID, attachmentID string, expiry time.Duration) (string, error) {
	start := time.Now()
	if s.attachments == nil {
		return "", blobcore.ErrUnsupported
	}
	var url string
	err := s.store.View(ctx, func(view domain.ReadView) error {
		if !attachmentListed(view, issueID, attachmentID) {
			return domain.NotFoundError{Collection: CollectionIssues, ID: issueID}
		}
		return nil
	})
	if err == nil {
		url, err = s.attachments.PresignURL(ctx, attachmentKey(issueID, attachmentID), blobcore.SignedURLOptions{
			Method: "GET",
			Expiry: expiry,
		})
	}
	s.observe("tracker.attachment_url", start, err)
	return url, err
}

// attachmentListed reports whether the issue's metadata lists the attachment.
func attachmentListed(view domain.ReadView, issueID, attachmentID string) bool {
	rec, ok := view.Get(CollectionIssues, issueID)
	if !ok {
		return false
	}
	existing, _ := rec["attachments"].([]any)
	for _, e := range existing {
		if m, _ := e.(map[string]any); m != nil && m["id"] == attachmentID {
			return true
		}
	}
	return false
}
