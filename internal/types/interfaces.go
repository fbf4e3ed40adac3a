// internal/types/interfaces.go
package types

import (
	"context"
)

// SessionStore persists conversations. History mutation is whole-list
// replacement except for UpdateRun, which updates the single placeholder
// message owned by an in-flight multi-agent run in place.
type SessionStore interface {
	ResolveOrCreate(ctx context.Context, key SessionKey) (*Session, error)
	Get(ctx context.Context, id SessionID) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
	Append(ctx context.Context, id SessionID, msg *Message) error
	ReplaceHistory(ctx context.Context, id SessionID, history []*Message) error
	UpdateRun(ctx context.Context, id SessionID, msgID MessageID, state *MultiAgentState) error
	SetTitle(ctx context.Context, id SessionID, title string) error
	SetPersonality(ctx context.Context, id SessionID, p Personality) error
	Delete(ctx context.Context, id SessionID) error
}

// AttachmentStore persists attachment payloads addressed by handle.
type AttachmentStore interface {
	Put(ctx context.Context, sessionID SessionID, name, mimeType string, data []byte) (Attachment, error)
	Get(ctx context.Context, id AttachmentID) ([]byte, error)
}
