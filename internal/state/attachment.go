// internal/state/attachment.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/user/magnus/internal/types"
)

// attachmentMeta is the on-disk metadata for an uploaded file. The raw bytes
// live next to it under the same ID.
type attachmentMeta struct {
	ID        types.AttachmentID `json:"id"`
	SessionID types.SessionID    `json:"session_id"`
	Name      string             `json:"name"`
	MimeType  string             `json:"mime_type"`
	Size      int64              `json:"size"`
	CreatedAt time.Time          `json:"created_at"`
}

// AttachmentStore stores uploaded files on disk, one pair of files per
// attachment at sessions/<sessionID>/attachments/<attachmentID>{,.json}.
type AttachmentStore struct {
	root string
}

// NewAttachmentStore creates a new file-backed AttachmentStore rooted at the given directory.
func NewAttachmentStore(root string) *AttachmentStore {
	return &AttachmentStore{root: root}
}

func (a *AttachmentStore) attachmentsDir(sessionID types.SessionID) string {
	return filepath.Join(a.root, "sessions", string(sessionID), "attachments")
}

// findAttachment locates an attachment's data file by ID across all sessions.
func (a *AttachmentStore) findAttachment(id types.AttachmentID) (string, error) {
	pattern := filepath.Join(a.root, "sessions", "*", "attachments", string(id))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob attachment: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("attachment not found: %s", id)
	}
	return matches[0], nil
}

// Put stores an uploaded file and returns its metadata.
func (a *AttachmentStore) Put(_ context.Context, sessionID types.SessionID, name, mimeType string, data []byte) (types.Attachment, error) {
	id := types.NewAttachmentID()

	dir := a.attachmentsDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.Attachment{}, fmt.Errorf("create attachments dir: %w", err)
	}

	meta := attachmentMeta{
		ID:        id,
		SessionID: sessionID,
		Name:      name,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return types.Attachment{}, fmt.Errorf("marshal attachment meta: %w", err)
	}

	if err := atomicWrite(filepath.Join(dir, string(id)), data); err != nil {
		return types.Attachment{}, err
	}
	if err := atomicWrite(filepath.Join(dir, string(id)+".json"), metaJSON); err != nil {
		return types.Attachment{}, err
	}

	return types.Attachment{ID: id, Name: name, MimeType: mimeType, Size: meta.Size}, nil
}

// Get returns the raw bytes of the given attachment.
func (a *AttachmentStore) Get(_ context.Context, id types.AttachmentID) ([]byte, error) {
	path, err := a.findAttachment(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return data, nil
}
