package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/internal/auth"
	"github.com/serenespa/admin-console/pkg/metrics"
)

// SessionKey is the gin context key holding the auth.Session seen by the guard.
const SessionKey = "session"

// RouteGuard gates protected pages on the shared auth state.
// Before the startup verification resolves only placeholder runs; an
// unauthenticated session is sent to loginPath and the attempted
// destination is dropped.
func RouteGuard(reader auth.Reader, loginPath string, placeholder gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := reader.Snapshot()
		d := auth.Decide(s)
		metrics.GuardDecisions.WithLabelValues(d.String()).Inc()

		switch d {
		case auth.DecisionPending:
			c.Header("Cache-Control", "no-store")
			if placeholder != nil {
				placeholder(c)
			} else {
				c.Status(http.StatusServiceUnavailable)
			}
			c.Abort()
		case auth.DecisionRedirect:
			status := http.StatusFound
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				status = http.StatusSeeOther
			}
			c.Redirect(status, loginPath)
			c.Abort()
		default:
			c.Set(SessionKey, s)
			c.Next()
		}
	}
}
