package handlers

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/pkg/logger"
)

// SignatureMaxAge bounds how old an upload timestamp may be.
const SignatureMaxAge = time.Hour

// SignParams signs upload parameters the way Cloudinary does: sorted
// key=value pairs joined by '&', the secret appended, sha1 in hex.
func SignParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// MediaHandler issues upload signatures and plays the media host: it
// accepts signed uploads and serves what was stored.
type MediaHandler struct {
	cloudName string
	apiKey    string
	secret    string
	store     media.Store
	now       func() time.Time
}

func NewMediaHandler(cloudName, apiKey, secret string, store media.Store) *MediaHandler {
	return &MediaHandler{cloudName: cloudName, apiKey: apiKey, secret: secret, store: store, now: time.Now}
}

func (h *MediaHandler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	r.POST("/api/cloudinary/create-signature", auth, h.CreateSignature)
	r.POST("/v1_1/:cloud/auto/upload", h.Upload)
	r.GET("/media/*key", h.Serve)
}

func (h *MediaHandler) CreateSignature(c *gin.Context) {
	var req struct {
		Folder string `json:"folder"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Folder == "" {
		req.Folder = "services"
	}
	ts := h.now().Unix()
	sig := SignParams(map[string]string{"folder": req.Folder, "timestamp": strconv.FormatInt(ts, 10)}, h.secret)
	c.JSON(http.StatusOK, gin.H{"signature": sig, "timestamp": ts, "cloudName": h.cloudName, "apiKey": h.apiKey})
}

// Upload verifies the signed form and stores the file.
func (h *MediaHandler) Upload(c *gin.Context) {
	if c.Param("cloud") != h.cloudName {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "unknown cloud"}})
		return
	}
	if !equalSecret(c.PostForm("api_key"), h.apiKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "invalid api_key"}})
		return
	}
	ts, err := strconv.ParseInt(c.PostForm("timestamp"), 10, 64)
	if err != nil || h.now().Sub(time.Unix(ts, 0)) > SignatureMaxAge {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "stale request"}})
		return
	}
	want := SignParams(map[string]string{"folder": c.PostForm("folder"), "timestamp": c.PostForm("timestamp")}, h.secret)
	if !equalSecret(c.PostForm("signature"), want) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "invalid signature"}})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "missing file"}})
		return
	}
	files, closeAll, err := media.FromHeaders([]*multipart.FileHeader{fh})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "cannot read file"}})
		return
	}
	defer closeAll()
	url, err := h.store.Upload(c.Request.Context(), files[0])
	if err != nil {
		logger.Errorf("store upload %s: %v", fh.Filename, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"message": "storage failed"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"secure_url":    url,
		"url":           url,
		"resource_type": mediaType(files[0].ContentType),
		"bytes":         fh.Size,
	})
}

func (h *MediaHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	rc, ct, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusBadGateway)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, ct, rc, map[string]string{"Cache-Control": "public, max-age=86400"})
}

func equalSecret(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
