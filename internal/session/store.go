// Package session keeps each browser's composer state in a gorilla/sessions store.
package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/Conceptual-Machines/lyric-composer/internal/composer"
	"github.com/Conceptual-Machines/lyric-composer/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	cookieName    = "lyric_composer"
	keySessionID  = "sid"
	keyState      = "state"
	maxAgeSeconds = 7 * 24 * 60 * 60
)

// Session is one browser's composer state
type Session struct {
	ID    string
	State *composer.UIState

	raw *sessions.Session
}

// Store loads and saves composer sessions
type Store struct {
	store sessions.Store

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewFilesystemStore keeps session data on disk under dir and only the signed id in the cookie.
// Drafts grow past what a cookie can hold.
func NewFilesystemStore(dir, secret string, secure bool) *Store {
	fs := sessions.NewFilesystemStore(dir, []byte(secret))
	fs.MaxLength(0)
	fs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return NewStore(fs)
}

// NewStore wraps an existing gorilla store
func NewStore(store sessions.Store) *Store {
	return &Store{store: store, locks: make(map[string]*sessionLock)}
}

// Load returns the session for r, starting a fresh one when none exists or it cannot be decoded
func (s *Store) Load(r *http.Request) (*Session, error) {
	raw, err := s.store.Get(r, cookieName)
	if err != nil {
		// Get still returns a usable new session alongside the decode error.
		logger.Warn("Discarding unreadable session", logger.Fields{"error": err.Error()})
		if raw == nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	id, _ := raw.Values[keySessionID].(string)
	if id == "" {
		id = uuid.New().String()
		raw.Values[keySessionID] = id
	}

	return &Session{ID: id, State: decodeState(id, raw), raw: raw}, nil
}

func decodeState(id string, raw *sessions.Session) *composer.UIState {
	state := composer.NewUIState()
	if encoded, ok := raw.Values[keyState].(string); ok && encoded != "" {
		if err := json.Unmarshal([]byte(encoded), state); err != nil {
			logger.Warn("Resetting corrupt composer state", logger.Fields{
				"session_id": id,
				"error":      err.Error(),
			})
			state = composer.NewUIState()
		}
	}
	return state
}

// Update applies fn to the latest stored state of sess and saves it.
// Updates to one session are serialized, and the state is re-read under the lock, so a
// request that loaded sess earlier does not overwrite what others saved meanwhile.
// On success sess.State is the saved state.
func (s *Store) Update(r *http.Request, w http.ResponseWriter, sess *Session, fn func(*composer.UIState) error) error {
	unlock := s.lock(sess.ID)
	defer unlock()

	s.refresh(r, sess)

	if fn != nil {
		if err := fn(sess.State); err != nil {
			return err
		}
	}
	return s.Save(r, w, sess)
}

// refresh re-reads sess from the backing store, bypassing the per-request cache.
// A session that was never saved keeps its in-memory state.
func (s *Store) refresh(r *http.Request, sess *Session) {
	raw, err := s.store.New(r, cookieName)
	if err != nil || raw == nil || raw.IsNew {
		return
	}
	if id, _ := raw.Values[keySessionID].(string); id != sess.ID {
		return
	}
	sess.raw = raw
	sess.State = decodeState(sess.ID, raw)
}

func (s *Store) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// Save writes the session state and sets the cookie on w
func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *Session) error {
	encoded, err := json.Marshal(sess.State)
	if err != nil {
		return fmt.Errorf("failed to encode composer state: %w", err)
	}
	sess.raw.Values[keyState] = string(encoded)

	if err := s.store.Save(r, w, sess.raw); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
