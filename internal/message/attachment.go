package message

import (
	"context"
	"fmt"
	"os"

	"github.com/misteral/simplegmail/internal/gmail"
)

// Attachment is a handle to one attachment of a fetched message, bound
// to the (user, message, attachment) triple needed to retrieve its
// content later. Data is nil until downloaded.
type Attachment struct {
	UserID    string
	MessageID string
	ID        string
	Filename  string
	MimeType  string
	Data      []byte
}

// SaveError wraps a file I/O failure while persisting an attachment.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save attachment to %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Download resolves the attachment data if it is not already present.
func (a *Attachment) Download(ctx context.Context, c gmail.Client) error {
	if a.Data != nil {
		return nil
	}
	data, err := c.GetAttachment(ctx, a.MessageID, a.ID)
	if err != nil {
		return err
	}
	a.Data = data
	return nil
}

// Save writes the attachment to path, downloading the data first when
// needed. An empty path uses the stored filename. Existing files are
// not overwritten unless overwrite is set.
func (a *Attachment) Save(ctx context.Context, c gmail.Client, path string, overwrite bool) error {
	if path == "" {
		path = a.Filename
	}
	if err := a.Download(ctx, c); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("cannot overwrite file %q without overwrite: %w", path, os.ErrExist)
		}
	}
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}
