package promptblocks

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// SessionManager owns the open editing sessions of a UI, one per document
// (the "open tabs" state). Each session pairs an independent Document with
// its variable value map. The manager is safe for concurrent use; each
// session serializes its own mutations, preserving the engine's
// single-writer-per-document model.
type SessionManager struct {
	mu       sync.RWMutex
	engine   *Engine
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewSessionManager creates a session manager over the given engine.
// A nil engine gets a default one.
func NewSessionManager(engine *Engine) *SessionManager {
	if engine == nil {
		engine = MustNew()
	}
	return &SessionManager{
		engine:   engine,
		sessions: make(map[string]*Session),
		logger:   engine.logger,
	}
}

// Open starts a session for the given ID with an empty document and an empty
// variable map. Returns an error if a session with the ID is already open.
func (m *SessionManager) Open(sessionID string) (*Session, error) {
	return m.open(sessionID, NewDocument(), nil)
}

// OpenFromStorage starts a session by decoding persisted storage text.
// The variable values are supplied alongside the text; they are never
// derived from it.
func (m *SessionManager) OpenFromStorage(sessionID string, storageText string, values map[string]string) (*Session, error) {
	return m.open(sessionID, m.engine.Decode(storageText), values)
}

func (m *SessionManager) open(sessionID string, doc *Document, values map[string]string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; exists {
		return nil, NewSessionExistsError(sessionID)
	}

	vars := make(map[string]string, len(values))
	for k, v := range values {
		vars[k] = v
	}

	session := &Session{
		id:     sessionID,
		engine: m.engine,
		doc:    doc,
		vars:   vars,
	}
	m.sessions[sessionID] = session

	m.logger.Debug("session opened",
		zap.String(MetaKeySessionID, sessionID),
		zap.Int("elements", doc.Len()))

	return session, nil
}

// Get returns the open session with the given ID.
func (m *SessionManager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	return session, ok
}

// CloseSession discards the session with the given ID.
// Returns true if the session existed and was closed.
func (m *SessionManager) CloseSession(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return false
	}
	delete(m.sessions, sessionID)

	m.logger.Debug("session closed", zap.String(MetaKeySessionID, sessionID))
	return true
}

// List returns all open session IDs in sorted order.
func (m *SessionManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Session is one open document plus its variable value map. All mutations
// go through the session, which serializes them with its own mutex.
type Session struct {
	id     string
	mu     sync.Mutex
	engine *Engine
	doc    *Document
	vars   map[string]string
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Apply runs a validated update command against the session's document.
func (s *Session) Apply(cmd UpdateCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.doc.Apply(cmd)
}

// Edit runs fn with exclusive access to the session's document. Use it for
// structural mutations (append, insert, remove) that are not update
// commands.
func (s *Session) Edit(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.doc)
}

// SetVariable sets a variable value for this session.
func (s *Session) SetVariable(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vars[name] = value
}

// DeleteVariable removes a variable value from this session.
func (s *Session) DeleteVariable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.vars, name)
}

// Variables returns a copy of the session's variable value map.
func (s *Session) Variables() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		values[k] = v
	}
	return values
}

// Encode serializes the session's document to storage text.
func (s *Session) Encode() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Encode(s.doc)
}

// Render produces the final filtered output for this session.
func (s *Session) Render(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Render(ctx, s.doc, s.vars)
}

// Preview produces the unfiltered live-preview output for this session.
func (s *Session) Preview(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Preview(ctx, s.doc, s.vars)
}

// ValidateVariables reports session variables in use that have no value.
func (s *Session) ValidateVariables(ctx context.Context) (*VariableValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.ValidateDocumentVariables(ctx, s.doc, s.vars)
}
