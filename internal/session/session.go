// internal/session/session.go
//
// Regform - Form sessions.
//
// Context
//   Each browser gets one registration form for as long as it keeps the
//   "regform_session" cookie.  The cookie holds an opaque UUID; the Session
//   it names lives in memory only, inside a bounded LRU.  When the LRU
//   pushes a session out (or the user clears it) the form is discarded, so
//   a submission still in flight when that happens cannot mutate it.
//
//   A Session is also the form's Notifier: outcome toasts queue here and are
//   drained by the next page render, the web equivalent of a transient toast.
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/regform/internal/cache"
	"github.com/yanizio/regform/internal/metrics"
	"github.com/yanizio/regform/internal/registration"
)

// DefaultCookieName is used when the config leaves sessions.cookie_name blank.
const DefaultCookieName = "regform_session"

// Session is one browser's form, coordinator, and pending toasts.
type Session struct {
	ID          string
	Form        *registration.Form
	Coordinator *registration.Coordinator

	mu     sync.Mutex
	toasts []registration.Notification
}

// compile-time assertion
var _ registration.Notifier = (*Session)(nil)

// Notify implements registration.Notifier by queueing a toast.
func (s *Session) Notify(_ context.Context, n registration.Notification) {
	s.mu.Lock()
	s.toasts = append(s.toasts, n)
	s.mu.Unlock()
}

// DrainToasts returns and clears pending toasts.
func (s *Session) DrainToasts() []registration.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.toasts
	s.toasts = nil
	return out
}

// Store hands out sessions keyed by cookie.
type Store struct {
	cookie string
	api    registration.Submitter
	lru    *cache.LRU[string, *Session]
}

// NewStore returns a Store holding at most maxEntries live forms.
func NewStore(api registration.Submitter, maxEntries int, cookieName string) *Store {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Store{
		cookie: cookieName,
		api:    api,
		lru: cache.New[string, *Session](maxEntries, func(id string, s *Session) {
			s.Form.Discard()
			metrics.ActiveSessions.Dec()
			metrics.SessionEvictTotal.Inc()
			zap.S().Debugw("form session discarded", "session", id)
		}),
	}
}

// Get returns the caller's session, creating one (and setting the cookie)
// when the cookie is missing or names an unknown session.
func (st *Store) Get(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(st.cookie); err == nil && c.Value != "" {
		if s, ok := st.lru.Get(c.Value); ok {
			return s
		}
	}

	s := st.newSession()
	http.SetCookie(w, &http.Cookie{
		Name:     st.cookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	return s
}

// Lookup returns an existing session without creating one.
func (st *Store) Lookup(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(st.cookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return st.lru.Get(c.Value)
}

// End discards the caller's session and clears the cookie.
func (st *Store) End(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(st.cookie); err == nil {
		st.lru.Remove(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     st.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Len reports live sessions.
func (st *Store) Len() int { return st.lru.Len() }

func (st *Store) newSession() *Session {
	s := &Session{
		ID:   uuid.NewString(),
		Form: registration.NewForm(),
	}
	s.Coordinator = registration.NewCoordinator(st.api, s)
	st.lru.Add(s.ID, s)
	metrics.ActiveSessions.Inc()
	return s
}
