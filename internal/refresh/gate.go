package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/serenespa/admin-console/pkg/logger"
	"github.com/serenespa/admin-console/pkg/metrics"
)

var (
	// ErrUnauthorized marks a call that failed because the session expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRefreshFailed is matched by every error delivered after a failed refresh.
	ErrRefreshFailed = errors.New("session refresh failed")
)

// RefreshError is delivered to the trigger and to every queued caller when
// the refresh call fails. All of them receive the same pointer.
type RefreshError struct {
	Cause error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s: %v", ErrRefreshFailed, e.Cause)
}

func (e *RefreshError) Unwrap() []error { return []error{ErrRefreshFailed, e.Cause} }

// Refresher performs the actual session renewal call.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

type State int

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

type pendingRequest struct {
	done chan error
}

// Gate serializes session refreshes: the first caller that needs one starts
// it, everyone arriving while it runs waits for its outcome.
type Gate struct {
	refresher Refresher
	timeout   time.Duration

	mu         sync.Mutex
	refreshing bool
	waiters    []*pendingRequest
}

// DefaultRefreshTimeout bounds a refresh call when none is configured.
const DefaultRefreshTimeout = 10 * time.Second

func NewGate(r Refresher, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &Gate{refresher: r, timeout: timeout}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refreshing {
		return Refreshing
	}
	return Idle
}

// Pending returns the number of callers queued behind the in-flight refresh.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}

// Await blocks until a refresh has settled. A nil return means the caller
// may replay its request once. The caller that finds the gate idle runs the
// refresh itself; everyone else queues.
func (g *Gate) Await(ctx context.Context) error {
	g.mu.Lock()
	if g.refreshing {
		p := &pendingRequest{done: make(chan error, 1)}
		g.waiters = append(g.waiters, p)
		g.mu.Unlock()
		metrics.RefreshWaiters.Inc()

		select {
		case err := <-p.done:
			return err
		case <-ctx.Done():
			g.forget(p)
			return ctx.Err()
		}
	}
	g.refreshing = true
	g.mu.Unlock()

	return g.run(ctx)
}

func (g *Gate) run(ctx context.Context) error {
	// The refresh outlives the trigger: queued callers depend on it.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	cause := g.refresher.Refresh(rctx)
	cancel()

	var result error
	if cause != nil {
		result = &RefreshError{Cause: cause}
		metrics.RefreshAttempts.WithLabelValues("failure").Inc()
	} else {
		metrics.RefreshAttempts.WithLabelValues("success").Inc()
	}

	g.mu.Lock()
	waiters := g.waiters
	g.waiters = nil
	g.refreshing = false
	g.mu.Unlock()

	if result != nil {
		logger.WithFields(logger.Fields{"waiters": len(waiters)}).Warnf("session refresh failed: %v", cause)
	} else {
		logger.WithFields(logger.Fields{"waiters": len(waiters)}).Debugf("session refreshed")
	}
	for _, p := range waiters {
		p.done <- result
	}
	return result
}

// forget drops a waiter that gave up. If the outcome was already delivered
// the buffered value is simply never read.
func (g *Gate) forget(p *pendingRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, w := range g.waiters {
		if w == p {
			g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
			return
		}
	}
}

// Do runs call and, if it fails with ErrUnauthorized, awaits the gate and
// runs it once more with the retried marker set. A call that is already
// marked retried is never gated again.
func (g *Gate) Do(ctx context.Context, call func(ctx context.Context) error) error {
	err := call(ctx)
	if err == nil || !errors.Is(err, ErrUnauthorized) || IsRetried(ctx) {
		return err
	}
	if werr := g.Await(ctx); werr != nil {
		return werr
	}
	return call(WithRetried(ctx))
}

type retriedKey struct{}

// WithRetried marks ctx as belonging to a request that was already replayed
// after a refresh.
func WithRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func IsRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}
