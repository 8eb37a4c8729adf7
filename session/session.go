// Package session keeps the live per-client app instances the demo
// server serves. Each session owns its own engine, filter store and
// event loop; idle sessions are evicted oldest-first once the cap is
// reached.
package session

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/filter"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/globe"
	"github.com/ThatSimPilot/ATCGroundPoint-AirportMap/internal/logger"
)

// Session pairs an app with the engine callers drive it through.
type Session struct {
	ID     string
	App    *globe.App
	Engine *globe.MemoryEngine
}

// Manager creates, caches and evicts sessions.
type Manager struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	lastAccessed map[string]time.Time
	maxSessions  int

	dataset  *airport.Dataset
	stateDir string
}

// NewManager serves sessions over the given dataset, persisting each
// session's filter state under stateDir.
func NewManager(ds *airport.Dataset, stateDir string, maxSessions int) *Manager {
	if maxSessions <= 0 {
		maxSessions = 32
	}
	return &Manager{
		sessions:     make(map[string]*Session),
		lastAccessed: make(map[string]time.Time),
		maxSessions:  maxSessions,
		dataset:      ds,
		stateDir:     stateDir,
	}
}

// Get returns the session with the given id, creating it on first use.
// An empty id allocates a fresh session.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.New().String()[:8]
	}
	if s, ok := m.sessions[id]; ok {
		m.lastAccessed[id] = time.Now()
		return s
	}

	if len(m.sessions) >= m.maxSessions {
		m.evictOldestLocked()
	}

	engine := globe.NewMemoryEngine()
	store := filter.NewStore(filepath.Join(m.stateDir, fmt.Sprintf("session-%s.json", id)))
	s := &Session{
		ID:     id,
		App:    globe.NewApp(engine, store, m.dataset),
		Engine: engine,
	}
	m.sessions[id] = s
	m.lastAccessed[id] = time.Now()
	logger.L().Info("session created", "id", id, "live", len(m.sessions))
	return s
}

// evictOldestLocked drops the least recently used session.
func (m *Manager) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, t := range m.lastAccessed {
		if oldestID == "" || t.Before(oldest) {
			oldestID = id
			oldest = t
		}
	}
	if oldestID == "" {
		return
	}
	m.sessions[oldestID].App.Close()
	delete(m.sessions, oldestID)
	delete(m.lastAccessed, oldestID)
	logger.L().Info("session evicted", "id", oldestID)
}

// Close shuts every session down.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.App.Close()
		delete(m.sessions, id)
		delete(m.lastAccessed, id)
	}
}
