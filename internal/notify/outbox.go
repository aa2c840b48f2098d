package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const emlContentType = "message/rfc822"

// Outbox stores messages that could not be handed to a transport. Write
// returns where the message was stored.
type Outbox interface {
	Write(ctx context.Context, msg EmailMessage) (string, error)
}

var (
	_ Outbox = (*FileOutbox)(nil)
	_ Outbox = (*MirroredOutbox)(nil)
)

// FileOutbox writes one .eml file per message into a directory
type FileOutbox struct {
	dir string
}

// NewFileOutbox creates an outbox rooted at dir. The directory is created
// on first write.
func NewFileOutbox(dir string) *FileOutbox {
	return &FileOutbox{dir: dir}
}

// Write stores msg as <unix millis>-<uuid>.eml and returns the file path
func (o *FileOutbox) Write(_ context.Context, msg EmailMessage) (string, error) {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return "", fmt.Errorf("notify: failed to create outbox directory: %w", err)
	}

	path := filepath.Join(o.dir, outboxFileName(msg))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("notify: failed to create outbox file: %w", err)
	}

	if _, err := f.Write(msg.EML()); err != nil {
		f.Close()
		return "", fmt.Errorf("notify: failed to write outbox file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("notify: failed to close outbox file: %w", err)
	}
	return path, nil
}

func outboxFileName(msg EmailMessage) string {
	return fmt.Sprintf("%d-%s.eml", msg.Date.UnixMilli(), uuid.NewString())
}

// ObjectPutter uploads a named object
type ObjectPutter interface {
	PutObject(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// MirroredOutbox writes to a local outbox and copies each file to object
// storage. The local file is written first and kept when the upload fails.
type MirroredOutbox struct {
	local *FileOutbox
	store ObjectPutter
}

// NewMirroredOutbox creates an outbox that mirrors local files to store
func NewMirroredOutbox(local *FileOutbox, store ObjectPutter) *MirroredOutbox {
	return &MirroredOutbox{local: local, store: store}
}

// Write stores msg locally, then uploads it under the same file name
func (o *MirroredOutbox) Write(ctx context.Context, msg EmailMessage) (string, error) {
	path, err := o.local.Write(ctx, msg)
	if err != nil {
		return "", err
	}

	if _, err := o.store.PutObject(ctx, filepath.Base(path), msg.EML(), emlContentType); err != nil {
		return path, fmt.Errorf("notify: outbox mirror upload failed: %w", err)
	}
	return path, nil
}
