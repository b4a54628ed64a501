package repair

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/specmend/specmend/document"
)

// Session holds the working state of one repair conversation: the current
// document and the report of the most recent loop over it.
type Session struct {
	// ID uniquely identifies the session.
	ID string
	// Doc is the current working document.
	Doc *document.Document
	// Report is the latest loop report, nil before the first run.
	Report *Report
	// CreatedAt is when the session was opened.
	CreatedAt time.Time
	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time
}

// sessionSnapshot is the persisted form of a Session. The document is
// stored serialized in its own format so a restore goes back through the
// loader.
type sessionSnapshot struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	Document  string    `json:"document"`
	Report    *Report   `json:"report,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot serializes the session for persistence.
func (s *Session) Snapshot() ([]byte, error) {
	data, err := s.Doc.Marshal(s.Doc.Format())
	if err != nil {
		return nil, fmt.Errorf("repair: snapshot of session %s: %w", s.ID, err)
	}
	return json.Marshal(sessionSnapshot{
		ID:        s.ID,
		Format:    s.Doc.Format().String(),
		Document:  string(data),
		Report:    s.Report,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	})
}

// RestoreSession rebuilds a session from a snapshot, reloading the
// document through the normal loader.
func RestoreSession(data []byte) (*Session, error) {
	var snap sessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("repair: restore session: %w", err)
	}
	doc, err := document.Load([]byte(snap.Document))
	if err != nil {
		return nil, fmt.Errorf("repair: restore session %s: %w", snap.ID, err)
	}
	return &Session{
		ID:        snap.ID,
		Doc:       doc,
		Report:    snap.Report,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}, nil
}

// Store keeps live sessions keyed by id. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Open creates a new session around the document and returns it.
func (st *Store) Open(doc *document.Document) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        newSessionID(),
		Doc:       doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Update replaces a session's document and report.
func (st *Store) Update(id string, doc *document.Document, report *Report) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return false
	}
	s.Doc = doc
	s.Report = report
	s.UpdatedAt = time.Now().UTC()
	return true
}

// Close removes a session from the store.
func (st *Store) Close(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// IDs lists the open session ids in sorted order.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func newSessionID() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
