package auth

import (
	"context"
	"sync"
	"time"

	"github.com/serenespa/admin-console/pkg/logger"
	"github.com/serenespa/admin-console/pkg/metrics"
)

// Checker performs the session check against the backend (GET /api/admins/verify).
type Checker interface {
	Verify(ctx context.Context) error
}

// Verifier populates State from the backend. The startup check runs once;
// there is no automatic retry.
type Verifier struct {
	checker Checker
	state   *State
	timeout time.Duration

	once sync.Once
	done chan struct{}
}

func NewVerifier(c Checker, s *State, timeout time.Duration) *Verifier {
	return &Verifier{checker: c, state: s, timeout: timeout, done: make(chan struct{})}
}

// Start issues the startup verification in the background. Repeated calls
// return the same channel, closed once the first attempt resolved.
func (v *Verifier) Start(ctx context.Context) <-chan struct{} {
	v.once.Do(func() {
		go func() {
			defer close(v.done)
			v.Verify(context.WithoutCancel(ctx))
		}()
	})
	return v.done
}

// Verify runs one check and records its result. Every failure leaves the
// session unauthenticated.
func (v *Verifier) Verify(ctx context.Context) Outcome {
	gen := v.state.beginVerification()

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	err := v.checker.Verify(ctx)

	outcome, _ := Classify(err)
	metrics.Verifications.WithLabelValues(outcome.String()).Inc()
	if err != nil {
		logger.WithFields(logger.Fields{"outcome": outcome.String()}).Infof("session verification failed: %v", err)
		v.state.completeVerification(gen, false, errorInfo(err))
		return outcome
	}
	if !v.state.completeVerification(gen, true, nil) {
		logger.Infof("session verified but a logout landed while the check was in flight")
		return Unauthenticated
	}
	return Authenticated
}
