package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/internal/catalog"
	"github.com/serenespa/admin-console/internal/catalog/repository"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/pkg/logger"
)

// ServiceHandler serves the catalog endpoints. Every route requires an
// admin session.
type ServiceHandler struct {
	repo  repository.Repository
	store media.Uploader
}

func NewServiceHandler(r repository.Repository, store media.Uploader) *ServiceHandler {
	return &ServiceHandler{repo: r, store: store}
}

func (h *ServiceHandler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	g := r.Group("/api/services", auth)
	g.GET("/getServices", h.listActive)
	g.GET("/inactive", h.listInactive)
	g.POST("", h.Create)
	g.PATCH("/:sid/reactivate", h.setActive(true))
	g.PATCH("/:sid/deactivate", h.setActive(false))
	g.PUT("/updateService/:sid", h.Update)
}

func (h *ServiceHandler) listActive(c *gin.Context)   { h.list(c, true) }
func (h *ServiceHandler) listInactive(c *gin.Context) { h.list(c, false) }

func (h *ServiceHandler) list(c *gin.Context, active bool) {
	out, err := h.repo.List(c.Request.Context(), active)
	if err != nil {
		logger.Errorf("list services (active=%t): %v", active, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func sidParam(c *gin.Context) (int64, bool) {
	sid, err := strconv.ParseInt(c.Param("sid"), 10, 64)
	if err != nil || sid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sid"})
		return 0, false
	}
	return sid, true
}

func (h *ServiceHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}
	logger.Errorf("%s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}

func (h *ServiceHandler) setActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sidParam(c)
		if !ok {
			return
		}
		if err := h.repo.SetActive(c.Request.Context(), sid, active); err != nil {
			h.fail(c, "set active", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sid": sid, "active": active})
	}
}

type updateBody struct {
	Name        string          `json:"name"`
	Duration    catalog.Minutes `json:"duration"`
	Description string          `json:"description"`
	AID         int64           `json:"aid"`
	Media       []string        `json:"media"`
}

// Update replaces name, duration, description, aid and the media list.
func (h *ServiceHandler) Update(c *gin.Context) {
	sid, ok := sidParam(c)
	if !ok {
		return
	}
	var body updateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u := catalog.ServiceUpdate{Name: body.Name, Duration: body.Duration, Description: body.Description, AID: body.AID, Media: body.Media}
	if err := catalog.Validate(u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if u.Media == nil {
		u.Media = []string{}
	}
	if err := h.repo.Update(c.Request.Context(), sid, u); err != nil {
		h.fail(c, "update service", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service updated", "sid": sid})
}

// Create accepts the multipart form with files under "media".
func (h *ServiceHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	dur, err := catalog.ParseMinutes(c.PostForm("duration"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	aid, _ := strconv.ParseInt(c.PostForm("aid"), 10, 64)
	if claims, ok := adminClaims(c); ok && aid == 0 {
		aid = claims.AID
	}
	s := &catalog.Service{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Duration:    dur,
		Description: c.PostForm("description"),
		AID:         aid,
		Active:      true,
	}
	if err := catalog.Validate(catalog.NewService{Name: s.Name, Duration: s.Duration, Description: s.Description, AID: s.AID}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, closeAll, err := media.FromHeaders(form.File["media"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded files"})
		return
	}
	defer closeAll()
	ctx := c.Request.Context()
	urls, err := media.UploadAll(ctx, h.store, files)
	if err != nil {
		logger.Errorf("store service media: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "media upload failed"})
		return
	}
	s.Media = make([]catalog.Media, 0, len(urls))
	for i, u := range urls {
		s.Media = append(s.Media, catalog.Media{URL: u, Type: mediaType(files[i].ContentType)})
	}

	sid, err := h.repo.Create(ctx, s)
	if err != nil {
		h.fail(c, "create service", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Service created", "sid": sid})
}

func mediaType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "image"
}
