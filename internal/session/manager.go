// Package session manages in-memory tutoring sessions and their ordered
// message logs. Durable persistence is an external collaborator; this
// manager only guarantees ordering, per-session serialization, and a
// lossless JSON export/import round trip.
package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// Session is one tutoring conversation: an ordered, append-only message
// log plus identity metadata.
type Session struct {
	ID        string                   `json:"id"`
	UserID    string                   `json:"user_id"`
	Messages  []tutortypes.ChatMessage `json:"messages"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// Manager owns all live sessions. Each session carries its own mutex so
// message appends for one session are serialized while distinct sessions
// proceed concurrently.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Create starts a new session for the given user.
func (m *Manager) Create(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Messages:  []tutortypes.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[s.ID] = s
	m.locks[s.ID] = &sync.Mutex{}
	logger.SessionOperation("created", s.ID, "user_id", userID)
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	return s, nil
}

// Delete discards a session and its lock.
func (m *Manager) Delete(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	delete(m.sessions, sessionID)
	delete(m.locks, sessionID)
	logger.SessionOperation("deleted", sessionID)
	return nil
}

// List returns all sessions ordered by creation time.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Lock acquires the per-session mutex guarding the message log, so each
// individual read, append, or export is atomic. Cross-operation ordering
// for a whole exchange is the pipeline's responsibility. Unlock via the
// returned function.
func (m *Manager) Lock(sessionID string) (func(), error) {
	m.mu.RLock()
	lock, ok := m.locks[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	lock.Lock()
	return lock.Unlock, nil
}

// AppendMessage appends one message to the session's ordered log and
// returns the stored copy.
func (m *Manager) AppendMessage(sessionID, role, content string, tokenCount int, lctx *tutortypes.LearningContext) (*tutortypes.ChatMessage, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	unlock, err := m.Lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	msg := tutortypes.ChatMessage{
		ID:         uuid.New().String(),
		Role:       role,
		Content:    content,
		Timestamp:  time.Now(),
		TokenCount: tokenCount,
		Context:    lctx,
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = msg.Timestamp
	return &msg, nil
}

// Messages returns a copy of the session's message log.
func (m *Manager) Messages(sessionID string) ([]tutortypes.ChatMessage, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	unlock, err := m.Lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := make([]tutortypes.ChatMessage, len(s.Messages))
	copy(out, s.Messages)
	return out, nil
}

// Export serializes a session to JSON, preserving message order, roles,
// and content exactly.
func (m *Manager) Export(sessionID string) ([]byte, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	unlock, err := m.Lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export session %s: %w", sessionID, err)
	}
	logger.SessionOperation("exported", sessionID, "message_count", len(s.Messages))
	return data, nil
}

// Import registers a previously exported session. Importing a session ID
// that already exists is rejected rather than silently merged.
func (m *Manager) Import(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session export: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("session export missing id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; exists {
		return nil, fmt.Errorf("session already exists: %s", s.ID)
	}
	m.sessions[s.ID] = &s
	m.locks[s.ID] = &sync.Mutex{}
	logger.SessionOperation("imported", s.ID, "message_count", len(s.Messages))
	return &s, nil
}
