package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/internal/admins"
	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/internal/sessions"
	"github.com/serenespa/admin-console/internal/tokens"
	"github.com/serenespa/admin-console/pkg/logger"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// ClaimsKey holds the verified *tokens.Claims on the gin context.
	ClaimsKey = "admin"
)

// LoginRequest is the body of POST /api/admins/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminHandler implements cookie sessions for admins: login, verify,
// logout and refresh-token rotation.
type AdminHandler struct {
	cfg       *config.Config
	admins    *admins.Service
	sessions  *sessions.Service
	blacklist sessions.Blacklist
}

func NewAdminHandler(cfg *config.Config, a *admins.Service, s *sessions.Service, bl sessions.Blacklist) *AdminHandler {
	if bl == nil {
		bl = sessions.NewMemoryBlacklist()
	}
	return &AdminHandler{cfg: cfg, admins: a, sessions: s, blacklist: bl}
}

func (h *AdminHandler) Register(r gin.IRouter) {
	r.POST("/api/admins/login", h.Login)
	r.GET("/api/admins/verify", h.RequireAdmin(), h.Verify)
	r.POST("/api/admins/logout", h.Logout)
	r.POST("/refresh-token", h.Refresh)
}

func (h *AdminHandler) accessTTL() time.Duration {
	if h.cfg.JWT.AccessTokenTTL > 0 {
		return h.cfg.JWT.AccessTokenTTL
	}
	return 15 * time.Minute
}

func (h *AdminHandler) refreshTTL() time.Duration {
	if h.cfg.JWT.RefreshTokenTTL > 0 {
		return h.cfg.JWT.RefreshTokenTTL
	}
	return 7 * 24 * time.Hour
}

func (h *AdminHandler) setCookies(c *gin.Context, access, refresh string, refreshTTL time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, access, int(h.accessTTL().Seconds()), "/", "", false, true)
	if refresh != "" {
		c.SetCookie(RefreshCookie, refresh, int(refreshTTL.Seconds()), "/", "", false, true)
	}
}

func clearCookies(c *gin.Context) {
	c.SetCookie(AccessCookie, "", -1, "/", "", false, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", false, true)
}

// Login checks credentials and sets the access and refresh cookies.
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}
	ctx := c.Request.Context()
	a, err := h.admins.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, admins.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		logger.Errorf("admin lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	sess, err := h.sessions.CreateSession(ctx, a.Sub(), a.AID, h.refreshTTL())
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, a, h.accessTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	h.setCookies(c, access, sess.RefreshToken, h.refreshTTL())
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "admin": a})
}

// Verify answers 200 for a valid access cookie; RequireAdmin already
// rejected everything else.
func (h *AdminHandler) Verify(c *gin.Context) {
	claims, ok := adminClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": gin.H{"aid": claims.AID, "email": claims.Email, "name": claims.Name}})
}

func adminClaims(c *gin.Context) (*tokens.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*tokens.Claims)
	return claims, ok
}

// Refresh rotates the refresh session and reissues the access cookie.
func (h *AdminHandler) Refresh(c *gin.Context) {
	raw, _ := c.Cookie(RefreshCookie)
	ctx := c.Request.Context()
	sess, err := h.sessions.Rotate(ctx, raw, h.refreshTTL())
	if err != nil {
		if errors.Is(err, sessions.ErrInvalidRefresh) {
			clearCookies(c)
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Refresh token expired, please log in again"})
			return
		}
		logger.Errorf("refresh rotation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	a, err := h.admins.GetByAID(ctx, sess.AID)
	if err != nil || a == nil {
		_ = h.sessions.DeleteRefresh(ctx, sess.RefreshToken)
		clearCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Admin no longer exists"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, a, h.accessTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	h.setCookies(c, access, sess.RefreshToken, time.Until(sess.ExpiresAt))
	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed"})
}

// Logout blacklists the current access token, drops the refresh session
// and clears both cookies. It succeeds without cookies too.
func (h *AdminHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if raw, err := c.Cookie(AccessCookie); err == nil && raw != "" {
		if claims, err := tokens.ParseAccessToken(h.cfg, raw); err == nil && claims.ExpiresAt != nil {
			if err := h.blacklist.Add(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
				return
			}
		}
	}
	if raw, err := c.Cookie(RefreshCookie); err == nil && raw != "" {
		if err := h.sessions.DeleteRefresh(ctx, raw); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
			return
		}
	}
	clearCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// RequireAdmin validates the access cookie (or a Bearer header for API
// tools) and stores the claims under ClaimsKey.
func (h *AdminHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(AccessCookie)
		if raw == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}
		claims, err := tokens.ParseAccessToken(h.cfg, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token expired or invalid"})
			return
		}
		revoked, err := h.blacklist.Contains(c.Request.Context(), claims.ID)
		if err != nil {
			logger.Warnf("blacklist check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "blacklist unavailable"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token revoked"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
