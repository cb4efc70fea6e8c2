package httpx

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sandboxops/console/internal/adapters/urlsync"
	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/screens"
)

// ScreenOpener creates list screen handles. *screens.Registry implements it.
type ScreenOpener interface {
	Screens() []screens.Info
	Open(slug string, urls listview.URLSync) (screens.Handle, error)
}

// SessionPolicy controls session lifetime and URL behavior.
type SessionPolicy struct {
	// IdleTTL is how long an untouched session keeps its controllers.
	IdleTTL time.Duration
	// URLMode selects whether page changes push or replace history entries.
	URLMode urlsync.WriteMode
}

// SessionRegistryOptions configures a SessionRegistry.
type SessionRegistryOptions struct {
	Screens ScreenOpener
	Policy  SessionPolicy
	Logger  *slog.Logger
}

// ScreenSession is one mounted list screen of a browser session together
// with the history its page number is synchronized with.
type ScreenSession struct {
	Handle  screens.Handle
	History *urlsync.History
}

type session struct {
	mu    sync.Mutex
	lists map[string]*ScreenSession
	// closed is set once the session has left the registry; no list may be
	// added after that.
	closed bool

	lastSeen time.Time // guarded by SessionRegistry.mu
}

// SessionRegistry keeps per-session, per-screen list controllers. Controllers
// are created lazily on first access and closed when their session has been
// idle for longer than the policy's IdleTTL.
type SessionRegistry struct {
	opener ScreenOpener
	policy SessionPolicy
	logger *slog.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// ErrRegistryClosed is returned by Screen after Close.
var ErrRegistryClosed = errors.New("session registry closed")

// NewSessionRegistry creates a SessionRegistry.
func NewSessionRegistry(opts SessionRegistryOptions) (*SessionRegistry, error) {
	if opts.Screens == nil {
		return nil, errors.New("screen opener is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy := opts.Policy
	if policy.IdleTTL <= 0 {
		policy.IdleTTL = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionRegistry{
		opener:   opts.Screens,
		policy:   policy,
		logger:   logger.With("component", "sessions"),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}, nil
}

// Screens returns the screens offered to sessions, in menu order.
func (r *SessionRegistry) Screens() []screens.Info { return r.opener.Screens() }

// Screen returns the session's list for slug, creating and mounting it when
// it does not exist yet. A new list starts at page (0 means the location has
// no page). created reports whether the list was created by this call.
func (r *SessionRegistry) Screen(sessionID, slug string, page int) (ss *ScreenSession, created bool, err error) {
	for {
		var s *session
		s, err = r.session(sessionID)
		if err != nil {
			return nil, false, err
		}
		ss, created, err = r.screenIn(s, sessionID, slug, page)
		if errors.Is(err, errSessionClosed) {
			// Dropped or swept since the lookup; the next lookup starts a
			// fresh session.
			continue
		}
		return ss, created, err
	}
}

var errSessionClosed = errors.New("session closed")

func (r *SessionRegistry) screenIn(s *session, sessionID, slug string, page int) (*ScreenSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, errSessionClosed
	}
	if ss, ok := s.lists[slug]; ok {
		return ss, false, nil
	}

	history := urlsync.NewHistory(page, r.policy.URLMode)
	handle, err := r.opener.Open(slug, history)
	if err != nil {
		return nil, false, err
	}
	handle.Mount(r.ctx)
	ss := &ScreenSession{Handle: handle, History: history}
	s.lists[slug] = ss
	r.logger.Debug("list opened", "session", shortID(sessionID), "screen", slug, "page", page)
	return ss, true, nil
}

func (r *SessionRegistry) session(id string) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	s, ok := r.sessions[id]
	if !ok {
		s = &session{lists: make(map[string]*ScreenSession)}
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	return s, nil
}

// Drop closes every list of the session and forgets it.
func (r *SessionRegistry) Drop(sessionID string) {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	if ok {
		s.close()
	}
}

// Sweep closes sessions idle for longer than IdleTTL and returns how many
// were closed.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.policy.IdleTTL)

	r.mu.Lock()
	var idle []*session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	if len(idle) > 0 {
		r.logger.Info("closed idle sessions", "count", len(idle))
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx is done, then closes the registry.
func (r *SessionRegistry) Run(ctx context.Context) error {
	interval := max(r.policy.IdleTTL/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close closes every session and cancels all in-flight fetches. Further
// calls to Screen fail with ErrRegistryClosed.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	all := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	r.cancel()
}

// Closed reports whether Close has been called.
func (r *SessionRegistry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (s *session) close() {
	s.mu.Lock()
	lists := s.lists
	s.lists = make(map[string]*ScreenSession)
	s.closed = true
	s.mu.Unlock()
	for _, ss := range lists {
		ss.Handle.Close()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
