package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkazakevich/studykeeper/internal/client/models"
	"github.com/dkazakevich/studykeeper/internal/client/remote"
	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/filex"
	"github.com/dkazakevich/studykeeper/internal/netx"
)

const attachmentsDir = "attachments"

// AttachmentService handles file attachments: staging the bytes locally,
// uploading them to object storage through presigned URLs, and resolving
// download URLs.
type AttachmentService interface {
	// Attach stages the file on disk and creates an attachment record tied
	// to a note. The upload happens separately, when the server is reachable.
	Attach(ctx context.Context, noteID, fileName string, data []byte) (*models.Record, error)

	// Upload pushes a staged attachment to object storage and marks the
	// record uploaded.
	Upload(ctx context.Context, localID string) error

	// DownloadURL resolves a short-lived URL for an uploaded attachment.
	DownloadURL(ctx context.Context, localID string) (string, error)
}

type attachmentService struct {
	study  StudyService
	remote remote.Client
}

func NewAttachmentService(study StudyService, rc remote.Client) AttachmentService {
	return &attachmentService{study: study, remote: rc}
}

// stagedPath returns where the attachment bytes live between Attach and
// Upload. The local id prefix keeps same-named files apart.
func stagedPath(localID, fileName string) (string, error) {
	dir, err := filex.EnsureSubDir(attachmentsDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, localID+"_"+fileName), nil
}

func (s *attachmentService) Attach(ctx context.Context, noteID, fileName string, data []byte) (*models.Record, error) {
	if fileName == "" {
		return nil, fmt.Errorf("%w: empty file name", common.ErrorValidation)
	}

	payload, err := models.Wrap(models.Attachment{
		NoteID:   noteID,
		FileName: fileName,
		Size:     int64(len(data)),
	})
	if err != nil {
		return nil, err
	}

	r, err := s.study.Create(ctx, models.EntityTypeAttachment, payload)
	if err != nil {
		return nil, err
	}

	path, err := stagedPath(r.LocalID, fileName)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o660); err != nil {
		return nil, fmt.Errorf("staging attachment: %w", err)
	}

	return r, nil
}

func (s *attachmentService) Upload(ctx context.Context, localID string) error {
	r, err := s.study.Get(ctx, models.EntityTypeAttachment, localID)
	if err != nil {
		return err
	}

	var a models.Attachment
	if err := r.Decode(&a); err != nil {
		return fmt.Errorf("decoding attachment %s: %w", localID, err)
	}
	if a.Uploaded {
		return nil
	}

	path, err := stagedPath(localID, a.FileName)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading staged attachment: %w", err)
	}

	key, url, err := s.remote.GetPresignedPutURL(ctx)
	if err != nil {
		return err
	}
	if err := netx.UploadToPresignedURL(ctx, url, data); err != nil {
		return fmt.Errorf("uploading attachment %s: %w", localID, err)
	}
	if err := s.remote.MarkUploaded(ctx, key); err != nil {
		return err
	}

	a.StorageKey = key
	a.Uploaded = true
	payload, err := models.Wrap(a)
	if err != nil {
		return err
	}
	if _, err := s.study.Update(ctx, models.EntityTypeAttachment, localID, payload); err != nil {
		return err
	}

	// Staged bytes are no longer needed once the object store has them.
	_ = os.Remove(path)

	return nil
}

func (s *attachmentService) DownloadURL(ctx context.Context, localID string) (string, error) {
	r, err := s.study.Get(ctx, models.EntityTypeAttachment, localID)
	if err != nil {
		return "", err
	}

	var a models.Attachment
	if err := r.Decode(&a); err != nil {
		return "", fmt.Errorf("decoding attachment %s: %w", localID, err)
	}
	if !a.Uploaded {
		return "", fmt.Errorf("%w: attachment %s not uploaded yet", common.ErrorValidation, localID)
	}

	return s.remote.GetPresignedGetURL(ctx, a.StorageKey)
}
