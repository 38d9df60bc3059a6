package media

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryStore keeps uploads in process. URLs are site-relative under prefix.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
	folder  string
	prefix  string
}

func NewMemoryStore(folder, prefix string) *MemoryStore {
	return &MemoryStore{objects: make(map[string]object), folder: folder, prefix: strings.TrimRight(prefix, "/")}
}

func (m *MemoryStore) Upload(ctx context.Context, f File) (string, error) {
	f = Sniff(f)
	data, err := io.ReadAll(f.Body)
	if err != nil {
		return "", err
	}
	key := ObjectKey(m.folder, f.Name)
	m.mu.Lock()
	m.objects[key] = object{data: data, contentType: f.ContentType}
	m.mu.Unlock()
	return m.prefix + "/" + key, nil
}

func (m *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[strings.TrimPrefix(key, "/")]
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(o.data)), o.contentType, nil
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
