package blob

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory is an in-process Store. It backs tests and lets the server boot
// without object-storage credentials in development.
type Memory struct {
	mu      sync.Mutex
	objects map[string]memObject

	// PutErr, when set, makes every Put fail with it. Tests use this to
	// exercise the upload failure path.
	PutErr error
}

type memObject struct {
	data        []byte
	contentType string
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Put(_ context.Context, key string, r io.Reader, contentType string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *Memory) PublicURL(key string) string {
	return fmt.Sprintf("mem://stagewise-images/%s", key)
}

// Object returns a stored object's bytes and content type.
func (m *Memory) Object(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o.data, o.contentType, ok
}

// Len reports how many objects are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
