// internal/state/session.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/magnus/internal/types"
)

// SessionStore is a JSON-file-backed session store.
// The key index lives in sessions/index.json and each session, history
// included, is a single document at sessions/<sessionID>.json.
type SessionStore struct {
	root string
	mu   sync.RWMutex
}

// NewSessionStore creates a new file-backed SessionStore rooted at the given directory.
func NewSessionStore(root string) *SessionStore {
	return &SessionStore{root: root}
}

func (s *SessionStore) indexPath() string {
	return filepath.Join(s.root, "sessions", "index.json")
}

func (s *SessionStore) sessionsDir() string {
	return filepath.Join(s.root, "sessions")
}

func (s *SessionStore) sessionPath(id types.SessionID) string {
	return filepath.Join(s.root, "sessions", string(id)+".json")
}

// loadIndex reads index.json and returns the key-to-ID map.
func (s *SessionStore) loadIndex() (map[types.SessionKey]types.SessionID, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[types.SessionKey]types.SessionID), nil
		}
		return nil, fmt.Errorf("read session index: %w", err)
	}

	index := make(map[types.SessionKey]types.SessionID)
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("unmarshal session index: %w", err)
	}
	return index, nil
}

// saveIndex marshals with indentation and writes atomically.
func (s *SessionStore) saveIndex(index map[types.SessionKey]types.SessionID) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session index: %w", err)
	}

	if err := os.MkdirAll(s.sessionsDir(), 0o755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	return atomicWrite(s.indexPath(), data)
}

// loadSession reads a session document from disk.
func (s *SessionStore) loadSession(id types.SessionID) (*types.Session, error) {
	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// saveSession writes the session document atomically, bumping UpdatedAt.
func (s *SessionStore) saveSession(session *types.Session) error {
	session.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(s.sessionsDir(), 0o755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	return atomicWrite(s.sessionPath(session.ID), data)
}

// ResolveOrCreate returns the session for the given key, creating a fresh
// one with an empty history if none exists.
func (s *SessionStore) ResolveOrCreate(_ context.Context, key types.SessionKey) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	if id, ok := index[key]; ok {
		return s.loadSession(id)
	}

	now := time.Now()
	session := &types.Session{
		ID:          types.NewSessionID(),
		Key:         key,
		Title:       "New Chat",
		Personality: types.PersonalityDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.saveSession(session); err != nil {
		return nil, err
	}

	index[key] = session.ID
	if err := s.saveIndex(index); err != nil {
		return nil, err
	}

	return session, nil
}

// Get returns the session with the given ID.
func (s *SessionStore) Get(_ context.Context, id types.SessionID) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadSession(id)
}

// List returns all sessions, histories included.
func (s *SessionStore) List(_ context.Context) ([]*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	sessions := make([]*types.Session, 0, len(index))
	for _, id := range index {
		session, err := s.loadSession(id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Append adds a message to the end of the session's history.
func (s *SessionStore) Append(_ context.Context, id types.SessionID, msg *types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return err
	}

	session.History = append(session.History, msg)
	return s.saveSession(session)
}

// ReplaceHistory swaps the session's full history for the given one.
func (s *SessionStore) ReplaceHistory(_ context.Context, id types.SessionID, history []*types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return err
	}

	session.History = history
	return s.saveSession(session)
}

// UpdateRun replaces the team-run payload of the message with the given ID.
// Later messages in the history are untouched, so progress snapshots can be
// published while the run's placeholder message already sits in the history.
func (s *SessionStore) UpdateRun(_ context.Context, id types.SessionID, msgID types.MessageID, state *types.MultiAgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return err
	}

	for _, msg := range session.History {
		if msg.ID == msgID {
			if msg.Payload == nil {
				msg.Payload = &types.Payload{}
			}
			msg.Payload.MultiAgent = state.Clone()
			if state.FinalResponse != "" {
				msg.Content = state.FinalResponse
			}
			return s.saveSession(session)
		}
	}
	return fmt.Errorf("message not found: %s", msgID)
}

// SetTitle updates the session's display title.
func (s *SessionStore) SetTitle(_ context.Context, id types.SessionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return err
	}

	session.Title = title
	return s.saveSession(session)
}

// SetPersonality updates the persona used for the session's replies.
func (s *SessionStore) SetPersonality(_ context.Context, id types.SessionID, p types.Personality) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return err
	}

	session.Personality = p
	return s.saveSession(session)
}

// Delete removes the session document, its index entry and any stored
// attachments.
func (s *SessionStore) Delete(_ context.Context, id types.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	found := false
	for key, sid := range index {
		if sid == id {
			delete(index, key)
			found = true
		}
	}
	if !found {
		return fmt.Errorf("session not found: %s", id)
	}

	if err := os.Remove(s.sessionPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(s.sessionsDir(), string(id))); err != nil {
		return fmt.Errorf("remove session data: %w", err)
	}

	return s.saveIndex(index)
}

// atomicWrite writes data to a temp file then renames it into place.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
