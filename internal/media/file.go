package media

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
)

// File is an upload waiting to be sent somewhere.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores a file and returns the url pages should reference.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// FromHeaders opens multipart files for upload. The returned close func
// releases every opened file.
func FromHeaders(headers []*multipart.FileHeader) ([]File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	files := make([]File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		ct := h.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		files = append(files, File{Name: h.Filename, ContentType: ct, Size: h.Size, Body: f})
	}
	return files, closeAll, nil
}

// Sniff fills ContentType from the first bytes when the caller did not know it.
func Sniff(f File) File {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(f.Body, head)
	head = head[:n]
	f.ContentType = http.DetectContentType(head)
	f.Body = io.MultiReader(bytes.NewReader(head), f.Body)
	return f
}

// Store is an Uploader that can also serve what it stored.
type Store interface {
	Uploader
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}
