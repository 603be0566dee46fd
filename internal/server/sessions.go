package server

import (
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/editor"
)

// defaultSessionTTL is used when no TTL is configured.
const defaultSessionTTL = 2 * time.Hour

// sessionStore keeps live editor sessions in memory, keyed by session id.
// Idle sessions are dropped by a periodic cleanup pass so abandoned builder
// pages do not accumulate.
type sessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]*editor.Session
	lastAccess map[string]time.Time
	ttl        time.Duration

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	store := &sessionStore{
		sessions:   make(map[string]*editor.Session),
		lastAccess: make(map[string]time.Time),
		ttl:        ttl,
	}
	store.cleanupTicker = time.NewTicker(ttl / 4)
	store.cleanupStop = make(chan struct{})
	go store.cleanup()
	return store
}

// Put registers a session.
func (st *sessionStore) Put(session *editor.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[session.ID] = session
	st.lastAccess[session.ID] = time.Now()
}

// Get returns the session with the given id, refreshing its idle timer.
func (st *sessionStore) Get(id string) (*editor.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	session, ok := st.sessions[id]
	if ok {
		st.lastAccess[id] = time.Now()
	}
	return session, ok
}

// Delete removes a session.
func (st *sessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	delete(st.lastAccess, id)
}

// Len reports the number of live sessions.
func (st *sessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *sessionStore) cleanup() {
	for {
		select {
		case <-st.cleanupTicker.C:
			st.dropIdle()
		case <-st.cleanupStop:
			return
		}
	}
}

// dropIdle removes sessions not touched within the TTL.
func (st *sessionStore) dropIdle() {
	cutoff := time.Now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	for id, last := range st.lastAccess {
		if last.Before(cutoff) {
			delete(st.sessions, id)
			delete(st.lastAccess, id)
		}
	}
}

// Stop stops the cleanup goroutine.
func (st *sessionStore) Stop() {
	if st.cleanupTicker != nil {
		st.cleanupTicker.Stop()
	}
	if st.cleanupStop != nil {
		close(st.cleanupStop)
	}
}
