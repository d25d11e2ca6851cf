// Package session owns the per-upload parse lifecycle and the table of
// parsed entry sequences.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gstlog-visualizer/backend/internal/models"
	"github.com/gstlog-visualizer/backend/internal/parser"
	"github.com/gstlog-visualizer/backend/internal/query"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion
const MaxSessions = 10

// SessionMaxAge is how long to keep completed sessions before cleanup
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

// ErrSessionNotFound is returned for unknown sessions and for sessions whose
// ingestion has not completed yet; callers cannot tell the two apart and
// must retry until data appears.
var ErrSessionNotFound = errors.New("session not found")

// Manager handles active log parsing sessions.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
}

// SessionState holds session metadata plus the parsed entry sequence.
// Entries are installed once, after parsing finishes, and are never mutated
// afterwards; the state owns the slice and readers get borrowed views.
type SessionState struct {
	Session      *models.ParseSession
	Entries      []models.Entry
	LastAccessed time.Time
}

// NewManager creates a new session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*SessionState),
	}
}

// StartSession mints a session id and dispatches the parse in a background
// goroutine. The caller gets the session back immediately and polls queries
// until data appears.
func (m *Manager) StartSession(fileID, filePath string) *models.ParseSession {
	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()

	session := models.NewParseSession(sessionID, fileID)
	session.Status = models.SessionStatusParsing

	state := &SessionState{
		Session:      session,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	go m.runParse(sessionID, filePath)

	return session
}

func (m *Manager) runParse(sessionID, filePath string) {
	// Recover from panics to prevent backend crash
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Parse %s] PANIC recovered: %v\n", sessionID[:8], r)
			m.updateSessionError(sessionID, fmt.Sprintf("parse panicked: %v", r))
		}
	}()

	start := time.Now()
	fmt.Printf("[Parse %s] Starting parse of %s\n", sessionID[:8], filePath)

	progressCb := func(lines int, bytesRead, totalBytes int64) {
		if totalBytes > 0 && lines%100000 == 0 {
			fmt.Printf("[Parse %s] Progress: %d lines (%.1f%%)\n",
				sessionID[:8], lines, float64(bytesRead)*100/float64(totalBytes))
		}
	}

	result, err := parser.ParseFile(filePath, progressCb)
	if err != nil {
		fmt.Printf("[Parse %s] ERROR: parse failed: %v\n", sessionID[:8], err)
		m.updateSessionError(sessionID, fmt.Sprintf("parse failed: %v", err))
		return
	}

	elapsed := time.Since(start)
	fmt.Printf("[Parse %s] Parse complete: %d entries, %d lines dropped in %s\n",
		sessionID[:8], len(result.Entries), result.DroppedLines, elapsed.Round(time.Millisecond))

	if len(result.Entries) == 0 {
		// An empty but well-formed file is indistinguishable from a wholly
		// malformed one; either way the session completes with zero entries.
		fmt.Printf("[Parse %s] WARNING: no entries were parsed; the file may be empty or not a GStreamer debug log\n", sessionID[:8])
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Entries = result.Entries
	state.Session.Status = models.SessionStatusComplete
	state.Session.EntryCount = len(result.Entries)
	state.Session.DroppedLines = result.DroppedLines
	state.Session.ProcessingTimeMs = elapsed.Milliseconds()

	if len(result.Entries) > 0 {
		state.Session.StartTime = result.Entries[0].TimestampMillis()
		state.Session.EndTime = result.Entries[len(result.Entries)-1].TimestampMillis()
	}
}

func (m *Manager) updateSessionError(sessionID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Session.Status = models.SessionStatusError
	state.Session.Error = reason
}

// cleanupOldSessionsIfNeeded removes oldest completed sessions if at capacity
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	var toDelete []string
	for id, state := range m.sessions {
		if state.Session.Status == models.SessionStatusComplete ||
			state.Session.Status == models.SessionStatusError {
			toDelete = append(toDelete, id)
		}
	}

	toFree := len(m.sessions) - MaxSessions + 1
	deleted := 0
	for _, id := range toDelete {
		if deleted >= toFree {
			break
		}
		delete(m.sessions, id)
		deleted++
		fmt.Printf("[Manager] Cleaned up old session %s to free memory\n", id[:8])
	}
}

// CleanupOldSessions removes sessions older than maxAge,
// but keeps sessions that have been accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		// Only clean up completed/error sessions
		if state.Session.Status != models.SessionStatusComplete &&
			state.Session.Status != models.SessionStatusError {
			continue
		}

		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}

		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			fmt.Printf("[Manager] Cleaned up aged session %s (last accessed: %s ago)\n",
				id[:8], time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}

// GetSession returns session metadata by ID, whatever its status.
func (m *Manager) GetSession(id string) (*models.ParseSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return state.Session, true
}

// TouchSession updates the LastAccessed timestamp for a session so the
// age-based cleanup leaves actively viewed sessions alone.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// Snapshot returns a read-only view of the session's entry sequence. A
// session that is still parsing reports ErrSessionNotFound the same as an
// unknown one. The returned slice is owned by the store and immutable.
func (m *Manager) Snapshot(id string) ([]models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Session.Status != models.SessionStatusComplete {
		return nil, ErrSessionNotFound
	}

	return state.Entries, nil
}

// QueryEntries returns one filtered, paginated page of a session's entries.
// Warnings report criteria that were skipped (e.g. uncompilable regexes).
func (m *Manager) QueryEntries(id string, f query.Filter, page, pageSize int) (query.Page, []string, error) {
	entries, err := m.Snapshot(id)
	if err != nil {
		return query.Page{}, nil, err
	}

	cf, warnings := f.Compile()
	return query.Paginate(cf.Apply(entries), page, pageSize), warnings, nil
}

// Timeline buckets a session's filtered entries into fixed-width intervals.
func (m *Manager) Timeline(id string, f query.Filter, interval string) (*query.Timeline, []string, error) {
	// Reject malformed intervals before any filtering work.
	if _, err := query.ParseInterval(interval); err != nil {
		return nil, nil, err
	}

	entries, err := m.Snapshot(id)
	if err != nil {
		return nil, nil, err
	}

	cf, warnings := f.Compile()
	tl, err := query.BuildTimeline(cf.Apply(entries), interval)
	if err != nil {
		return nil, nil, err
	}
	return tl, warnings, nil
}

// FilterOptions returns the distinct filterable values in a session.
func (m *Manager) FilterOptions(id string) (*query.Options, error) {
	entries, err := m.Snapshot(id)
	if err != nil {
		return nil, err
	}
	return query.CollectOptions(entries), nil
}
