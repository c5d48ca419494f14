// Package session keeps the per-visitor state of the web frontend in memory.
package session

import (
	"net/http"
	"net/http/cookiejar"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/alert"
	"district-growth/cmd/web/listview"
	"district-growth/cmd/web/registration"
)

// ginKey is where the middleware stores the current visitor.
const ginKey = "visitor_session"

// Session is everything the frontend remembers about one browser.
type Session struct {
	ID    string
	Alert *alert.Notifier
	Lists *listview.Tracker

	mu sync.Mutex
	// jar holds the directory API's own session cookie; it is relayed, never issued here.
	jar          http.CookieJar
	registration *registration.Machine
	username     string
}

func newSession(id string) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:    id,
		jar:   jar,
		Alert: alert.NewNotifier(),
		Lists: listview.NewTracker(),
	}, nil
}

// MountRegistration replaces the visitor's registration machine with a fresh one,
// tearing the previous one down.
func (s *Session) MountRegistration(build func() *registration.Machine) *registration.Machine {
	m := build()
	s.mu.Lock()
	old := s.registration
	s.registration = m
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return m
}

// Registration returns the mounted machine, or nil when the form was never opened.
func (s *Session) Registration() *registration.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registration
}

// DropRegistration unmounts m if it is still the current machine.
func (s *Session) DropRegistration(m *registration.Machine) {
	s.mu.Lock()
	if s.registration == m {
		s.registration = nil
	}
	s.mu.Unlock()
	if m != nil {
		m.Close()
	}
}

// SignIn records the directory user this visitor logged in as.
func (s *Session) SignIn(username string) {
	s.mu.Lock()
	s.username = username
	s.mu.Unlock()
}

// Username is the logged-in directory user, empty for anonymous visitors.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Session) SignOut() {
	s.SignIn("")
}

// ResetUpstream forgets the relayed directory cookie, used on logout.
func (s *Session) ResetUpstream() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jar = jar
	s.mu.Unlock()
	return nil
}

// CookieJar returns the current upstream jar.
func (s *Session) CookieJar() http.CookieJar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar
}

// Close stops every background task owned by the session.
func (s *Session) Close() {
	s.mu.Lock()
	m := s.registration
	s.registration = nil
	s.mu.Unlock()
	if m != nil {
		m.Close()
	}
	s.Lists.CancelAll()
}

// Store is a bounded, in-memory set of sessions. The least recently seen
// visitor is evicted and torn down when the store is full.
type Store struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func NewStore(maxVisitors int) *Store {
	cache := lru.New(maxVisitors)
	cache.OnEvicted = func(_ lru.Key, value any) {
		if sess, ok := value.(*Session); ok {
			sess.Close()
			logger.DebugWithFields("visitor session closed", logger.Fields{"visitors": cache.Len()})
		}
	}
	return &Store{cache: cache}
}

// Get returns the session for id and marks it as recently used.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}

// Create starts a new session with a random id.
func (s *Store) Create() (*Session, error) {
	sess, err := newSession(uuid.NewString())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache.Add(sess.ID, sess)
	s.mu.Unlock()
	return sess, nil
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// Close tears down every session, used at shutdown.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Clear()
}

// Set attaches sess to the gin context.
func Set(c *gin.Context, sess *Session) {
	c.Set(ginKey, sess)
}

// Current returns the visitor attached by the session middleware. It panics when
// the middleware is not installed, which is a wiring bug.
func Current(c *gin.Context) *Session {
	return c.MustGet(ginKey).(*Session)
}
