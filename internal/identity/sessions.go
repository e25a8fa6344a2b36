package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/internal/document"
)

// sessionRecord is the small side-document persisted independently of the
// marketplace state.
type sessionRecord struct {
	UserID  *uuid.UUID `json:"userId"`
	Token   string     `json:"token"`
	LoginAt time.Time  `json:"loginAt"`
}

// SessionManager persists the current session under its own blob key.
type SessionManager struct {
	backend document.Backend
}

// NewSessionManager builds a session manager over the given backend.
func NewSessionManager(backend document.Backend) (*SessionManager, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &SessionManager{backend: backend}, nil
}

// Set stores the session for the given user.
func (m *SessionManager) Set(ctx context.Context, userID uuid.UUID, token string, loginAt time.Time) error {
	record := sessionRecord{UserID: &userID, Token: token, LoginAt: loginAt}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.backend.Write(ctx, document.KeySession, data)
}

// Get returns the persisted session or nil when absent or unreadable.
func (m *SessionManager) Get(ctx context.Context) (*sessionRecord, error) {
	data, ok, err := m.backend.Read(ctx, document.KeySession)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, nil
	}
	if record.UserID == nil || record.Token == "" {
		return nil, nil
	}
	return &record, nil
}

// Clear drops the session. Idempotent.
func (m *SessionManager) Clear(ctx context.Context) error {
	return m.backend.Delete(ctx, document.KeySession)
}
