package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkazakevich/studykeeper/internal/common"
)

// Attach reads a file from disk and stages it as an attachment on a note.
func (a *App) Attach(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: attach <note-id> <path>", common.ErrorValidation)
	}
	noteID, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	r, err := a.attachments.Attach(ctx, noteID, filepath.Base(path), data)
	if err != nil {
		return err
	}

	printlnFn("Attachment staged:", r.LocalID)
	printlnFn("Use 'upload", r.LocalID+"' to push it to storage")
	return nil
}

// Upload pushes a staged attachment to object storage.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: upload <attachment-id>", common.ErrorValidation)
	}

	if err := a.attachments.Upload(ctx, args[0]); err != nil {
		return err
	}

	printlnFn("Uploaded")
	return nil
}

// GetURL resolves a short-lived download URL for an uploaded attachment.
func (a *App) GetURL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: geturl <attachment-id>", common.ErrorValidation)
	}

	url, err := a.attachments.DownloadURL(ctx, args[0])
	if err != nil {
		return err
	}

	printlnFn(url)
	return nil
}
