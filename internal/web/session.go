package web

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/internal/auth"
	"github.com/serenespa/admin-console/internal/backend"
	"github.com/serenespa/admin-console/pkg/logger"
)

type loginPage struct {
	Title string
	Email string
	Error string
}

func (w *Console) loginPage(c *gin.Context) {
	s := w.state.Snapshot()
	if s.Initialized && s.IsAuthenticated {
		c.Redirect(http.StatusFound, DefaultPath)
		return
	}
	c.HTML(http.StatusOK, "login", loginPage{Title: "Sign in"})
}

func (w *Console) login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	o, err := w.manager.Login(c.Request.Context(), email, password)
	if err != nil {
		msg := backend.DisplayMessage(err, "Login failed. Please try again.")
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrMissingCredentials) {
			msg, status = "Email and password are required", http.StatusBadRequest
		}
		logger.Infof("console login rejected: %v", err)
		c.HTML(status, "login", loginPage{Title: "Sign in", Email: email, Error: msg})
		return
	}
	if o != auth.Authenticated {
		c.HTML(http.StatusUnauthorized, "login", loginPage{Title: "Sign in", Email: email, Error: "Signed in, but the session could not be verified."})
		return
	}
	c.Redirect(http.StatusSeeOther, DefaultPath)
}

func (w *Console) logout(c *gin.Context) {
	_ = w.manager.Logout(c.Request.Context())
	c.Redirect(http.StatusSeeOther, LoginPath)
}

// pending is the blocking placeholder shown while the startup
// verification is in flight.
func (w *Console) pending(c *gin.Context) {
	c.HTML(http.StatusOK, "pending", gin.H{"Title": "Loading"})
}

// events streams session snapshots as server-sent events. Slow readers only
// ever see the latest snapshot.
func (w *Console) events(c *gin.Context) {
	ch, cancel := w.state.Subscribe()
	defer cancel()
	// The stream outlives the server's WriteTimeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debugf("session events: cannot clear write deadline: %v", err)
	}
	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")

	done := c.Request.Context().Done()
	c.Stream(func(out io.Writer) bool {
		select {
		case s, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("session", s)
			return true
		case <-done:
			return false
		}
	})
}
