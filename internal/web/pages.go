package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/internal/auth"
	"github.com/serenespa/admin-console/internal/catalog"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/pkg/logger"
)

type listPage struct {
	Title    string
	Nav      string
	Inactive bool
	Query    string
	Services []catalog.Service
	Error    string
	Message  string
}

type formPage struct {
	Title   string
	Nav     string
	Service catalog.Service
	Error   string
	Message string
}

// sessionEnded ends the local session when err says the backend session
// is gone and sends the browser to the login page. Other errors stay with
// the page.
func (w *Console) sessionEnded(c *gin.Context, err error) bool {
	o, ok := auth.Classify(err)
	if !ok || o == auth.Authenticated {
		return false
	}
	logger.Infof("session ended during %s %s: %s", c.Request.Method, c.Request.URL.Path, o)
	w.state.SetUnauthenticated()
	c.Redirect(http.StatusSeeOther, LoginPath)
	return true
}

func (w *Console) activeList(c *gin.Context) {
	p := listPage{Title: "Active services", Nav: "active", Query: c.Query("q")}
	if sid := c.Query("updated"); sid != "" {
		p.Message = "Service updated successfully!"
	}
	w.renderList(c, p, w.catalog.ListActive, "Failed to load services")
}

func (w *Console) inactiveList(c *gin.Context) {
	p := listPage{Title: "Inactive services", Nav: "inactive", Inactive: true, Query: c.Query("q")}
	if c.Query("reactivated") != "" {
		p.Message = "Service reactivated."
	}
	w.renderList(c, p, w.catalog.ListInactive, "Failed to load inactive services")
}

func (w *Console) renderList(c *gin.Context, p listPage, load func(context.Context) ([]catalog.Service, error), failMsg string) {
	services, err := load(c.Request.Context())
	if err != nil {
		if w.sessionEnded(c, err) {
			return
		}
		logger.Errorf("%s: %v", strings.ToLower(p.Title), err)
		p.Error = failMsg
		c.HTML(http.StatusBadGateway, "services", p)
		return
	}
	p.Services = catalog.Filter(services, p.Query)
	c.HTML(http.StatusOK, "services", p)
}

func (w *Console) reactivate(c *gin.Context) {
	sid, err := strconv.ParseInt(c.Param("sid"), 10, 64)
	if err != nil || sid <= 0 {
		c.Redirect(http.StatusSeeOther, "/admin/inactive-service")
		return
	}
	if err := w.catalog.Reactivate(c.Request.Context(), sid); err != nil {
		if w.sessionEnded(c, err) {
			return
		}
		logger.Errorf("reactivate service %d: %v", sid, err)
		w.renderList(c, listPage{Title: "Inactive services", Nav: "inactive", Inactive: true, Error: "Failed to reactivate service"},
			w.catalog.ListInactive, "Failed to load inactive services")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/inactive-service?reactivated="+strconv.FormatInt(sid, 10))
}

func (w *Console) createForm(c *gin.Context) {
	c.HTML(http.StatusOK, "create", formPage{Title: "Create service", Nav: "create"})
}

func formService(c *gin.Context) (catalog.Service, error) {
	s := catalog.Service{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}
	d, err := catalog.ParseMinutes(c.PostForm("duration"))
	if err != nil {
		return s, err
	}
	s.Duration = d
	if raw := strings.TrimSpace(c.PostForm("aid")); raw != "" {
		if s.AID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return s, fmt.Errorf("%w: admin id %q", catalog.ErrInvalidService, raw)
		}
	}
	return s, nil
}

func (w *Console) create(c *gin.Context) {
	page := formPage{Title: "Create service", Nav: "create"}
	s, err := formService(c)
	page.Service = s
	if err != nil {
		page.Error = "Failed to create service. Please try again."
		c.HTML(http.StatusBadRequest, "create", page)
		return
	}

	var files []media.File
	if form, err := c.MultipartForm(); err == nil {
		var closeAll func()
		files, closeAll, err = media.FromHeaders(form.File["media"])
		if err != nil {
			page.Error = "Could not read the selected files."
			c.HTML(http.StatusBadRequest, "create", page)
			return
		}
		defer closeAll()
	}

	sid, err := w.catalog.Create(c.Request.Context(), catalog.NewService{
		Name: s.Name, Duration: s.Duration, Description: s.Description, AID: s.AID,
	}, files)
	if err != nil {
		if w.sessionEnded(c, err) {
			return
		}
		logger.Errorf("create service: %v", err)
		page.Error = "Failed to create service. Please try again."
		c.HTML(http.StatusBadGateway, "create", page)
		return
	}
	c.HTML(http.StatusOK, "create", formPage{
		Title:   "Create service",
		Nav:     "create",
		Message: fmt.Sprintf("Service created successfully! ID: %d", sid),
	})
}

// findActive loads the active list and picks sid; there is no single
// service endpoint.
func (w *Console) findActive(c *gin.Context) (*catalog.Service, bool) {
	sid, err := strconv.ParseInt(c.Param("sid"), 10, 64)
	if err != nil || sid <= 0 {
		c.Redirect(http.StatusFound, "/admin/active-service")
		return nil, false
	}
	services, err := w.catalog.ListActive(c.Request.Context())
	if err != nil {
		if w.sessionEnded(c, err) {
			return nil, false
		}
		logger.Errorf("load service %d: %v", sid, err)
		c.HTML(http.StatusBadGateway, "services", listPage{Title: "Active services", Nav: "active", Error: "Failed to load services"})
		return nil, false
	}
	for i := range services {
		if services[i].SID == sid {
			return &services[i], true
		}
	}
	c.HTML(http.StatusNotFound, "services", listPage{Title: "Active services", Nav: "active", Services: services, Error: "Service not found"})
	return nil, false
}

func (w *Console) editForm(c *gin.Context) {
	s, ok := w.findActive(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "edit", formPage{Title: "Edit " + s.Name, Nav: "active", Service: *s})
}

// edit uploads new files, keeps the existing media the form left checked,
// then sends the update.
func (w *Console) edit(c *gin.Context) {
	current, ok := w.findActive(c)
	if !ok {
		return
	}
	page := formPage{Title: "Edit " + current.Name, Nav: "active", Service: *current}
	s, err := formService(c)
	if err != nil {
		page.Error = "Failed to update service."
		c.HTML(http.StatusBadRequest, "edit", page)
		return
	}
	s.SID, s.Media = current.SID, current.Media
	page.Service = s

	ctx := c.Request.Context()
	var uploaded []string
	if form, err := c.MultipartForm(); err == nil && len(form.File["media"]) > 0 {
		if w.uploader == nil {
			page.Error = "Media uploads are not configured."
			c.HTML(http.StatusBadRequest, "edit", page)
			return
		}
		files, closeAll, err := media.FromHeaders(form.File["media"])
		if err != nil {
			page.Error = "Could not read the selected files."
			c.HTML(http.StatusBadRequest, "edit", page)
			return
		}
		defer closeAll()
		if uploaded, err = media.UploadAll(ctx, w.uploader, files); err != nil {
			if w.sessionEnded(c, err) {
				return
			}
			logger.Errorf("upload media for service %d: %v", s.SID, err)
			page.Error = "Failed to upload media."
			c.HTML(http.StatusBadGateway, "edit", page)
			return
		}
	}

	err = w.catalog.Update(ctx, s.SID, catalog.ServiceUpdate{
		Name:        s.Name,
		Duration:    s.Duration,
		Description: s.Description,
		AID:         s.AID,
		Media:       media.Merge(kept(current, c.PostFormArray("keep")), uploaded),
	})
	if err != nil {
		if w.sessionEnded(c, err) {
			return
		}
		logger.Errorf("update service %d: %v", s.SID, err)
		page.Error = "Failed to update service."
		c.HTML(http.StatusBadGateway, "edit", page)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/active-service?updated="+strconv.FormatInt(s.SID, 10))
}

// kept returns the current media urls the form asked to keep, in their
// original order. Unknown urls are ignored.
func kept(s *catalog.Service, keep []string) []string {
	want := make(map[string]bool, len(keep))
	for _, k := range keep {
		want[k] = true
	}
	out := make([]string, 0, len(keep))
	for _, u := range s.MediaURLs() {
		if want[u] {
			out = append(out, u)
		}
	}
	return out
}
