package session

import (
	"context"
	"log"
	"sync"
	"time"

	apperrors "github.com/usstm/unionclient/internal/platform/errors"
)

const (
	// DefaultRefreshInterval is how often the refresh loop checks session
	// freshness.
	DefaultRefreshInterval = time.Minute

	// refreshThreshold refreshes proactively when the token expires within
	// this window.
	refreshThreshold = 15 * time.Minute
)

// Controller is the single owner of the session snapshot. It exposes
// imperative login/logout, a staleness flag for collaborators that changed
// server-side entitlements, and a refresh loop that keeps the snapshot fresh
// before the backend token expires.
//
// Completions are serialized through a generation counter: Login and Logout
// bump the generation, and any fetch completion carrying a stale generation
// is discarded instead of overwriting newer state.
type Controller struct {
	backend Backend
	now     func() time.Time

	mu          sync.Mutex
	state       Session
	generation  uint64
	subscribers map[int]chan struct{}
	nextSubID   int
}

// NewController creates a Controller in the logged-out state. A nil now
// defaults to time.Now.
func NewController(backend Backend, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		backend:     backend,
		now:         now,
		state:       New(),
		subscribers: map[int]chan struct{}{},
	}
}

// Snapshot returns the current session snapshot. Treat it as immutable.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel that receives a signal whenever the snapshot
// is replaced, and a function to unsubscribe. Signals are coalesced: a slow
// reader sees at least one signal for any burst of updates.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan struct{}, 1)
	c.subscribers[id] = ch

	unsubscribe := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
	return ch, unsubscribe
}

// SetStale flags the cached session data as untrusted. Collaborators call
// this after any action that may have changed server-side entitlements; the
// next loop tick refetches before the snapshot is trusted again.
func (c *Controller) SetStale(stale bool) {
	c.dispatch(staleSet{stale: stale})
}

// Login exchanges credentials for a backend session cookie. On success the
// snapshot becomes authenticated and stale, which forces the next tick to
// load the full profile. On failure the error state carries a credential
// error and Login reports false. The loading flag is cleared on every path.
func (c *Controller) Login(ctx context.Context, email, password string, remember bool) bool {
	gen := c.bumpGeneration()
	c.dispatch(loadingSet{loading: true})
	defer c.dispatchIfCurrent(gen, loadingSet{loading: false})

	token, err := c.backend.CSRFToken(ctx)
	if err != nil {
		c.dispatchIfCurrent(gen, errorSet{err: apperrors.Wrap(apperrors.CodeAuthCSRFTokenMissing, "fetch csrf token", err)})
		return false
	}

	input := LoginInput{Email: email, Password: password, CSRFToken: token, Remember: remember}
	if err := c.backend.Login(ctx, input); err != nil {
		c.dispatchIfCurrent(gen, errorSet{err: apperrors.Wrap(apperrors.CodeAuthInvalidCredentials, "login rejected by backend", err)})
		return false
	}

	c.dispatchIfCurrent(gen, loginSucceeded{})
	return true
}

// Logout ends the backend session. Local state is cleared even when the
// backend call fails: keeping authenticated state on a dead cookie is worse
// than forcing a re-login, so only the error field survives a failed call.
func (c *Controller) Logout(ctx context.Context) {
	gen := c.bumpGeneration()
	c.dispatch(loadingSet{loading: true})

	err := c.backend.Logout(ctx)
	c.dispatchIfCurrent(gen, loggedOut{})
	if err != nil {
		c.dispatchIfCurrent(gen, errorSet{err: apperrors.Wrap(apperrors.CodeAuthLogoutFailed, "backend logout", err)})
	}
}

// Run drives the refresh loop until ctx is cancelled. The first check runs
// immediately; afterwards one check runs per interval. A non-positive
// interval selects DefaultRefreshInterval.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	c.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// Start runs the refresh loop in a goroutine and returns its cancel function
// and a channel closed when the loop has fully stopped.
func (c *Controller) Start(interval time.Duration) (context.CancelFunc, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx, interval)
	}()
	return cancel, done
}

// tick refreshes when the snapshot has no profile yet, was flagged stale, or
// is authenticated with a token expiring inside the refresh window.
func (c *Controller) tick(ctx context.Context) {
	state := c.Snapshot()
	switch {
	case state.Student == nil, state.Stale:
		c.refresh(ctx)
	case state.Authenticated && c.expiringSoon(state):
		c.refresh(ctx)
	}
}

func (c *Controller) expiringSoon(state Session) bool {
	if state.Expiry.IsZero() {
		return false
	}
	return state.Expiry.Sub(c.now()) <= refreshThreshold
}

// refresh fetches the full profile snapshot and replaces the session. Any
// failure lands in the logged-out state with the error mapped to the
// network / session-expired / generic taxonomy. The completion is dropped if
// a login or logout won the race meanwhile.
func (c *Controller) refresh(ctx context.Context) {
	gen := c.currentGeneration()
	c.dispatchIfCurrent(gen, loadingSet{loading: true})
	defer c.dispatchIfCurrent(gen, loadingSet{loading: false})

	data, err := c.backend.CurrentUser(ctx)
	if err != nil {
		if c.dispatchIfCurrent(gen, loggedOut{}) {
			c.dispatchIfCurrent(gen, errorSet{err: classifyRefreshError(err)})
			log.Printf("session refresh failed: %v", err)
		}
		return
	}

	c.dispatchIfCurrent(gen, userDataFetched{data: data})
}

func classifyRefreshError(err error) error {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeAuthNetworkFailure, apperrors.CodeAuthSessionExpired:
		return err
	default:
		return apperrors.Wrap(apperrors.CodeAuthRefreshFailed, "fetch user data", err)
	}
}

func (c *Controller) bumpGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

func (c *Controller) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// dispatch applies the action and notifies subscribers.
func (c *Controller) dispatch(act action) {
	c.mu.Lock()
	c.state = apply(c.state, act)
	channels := make([]chan struct{}, 0, len(c.subscribers))
	for _, ch := range c.subscribers {
		channels = append(channels, ch)
	}
	c.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// dispatchIfCurrent applies the action only when gen is still the latest
// generation, reporting whether it was applied.
func (c *Controller) dispatchIfCurrent(gen uint64, act action) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	c.state = apply(c.state, act)
	channels := make([]chan struct{}, 0, len(c.subscribers))
	for _, ch := range c.subscribers {
		channels = append(channels, ch)
	}
	c.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return true
}
