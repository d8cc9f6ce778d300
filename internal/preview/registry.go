// Package preview serves staged files back to the client under short lived
// handles. A handle stays resolvable until it is released.
package preview

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/satonic/satonic-storefront/internal/models"
)

var (
	ErrUnknownHandle = errors.New("unknown preview handle")
	ErrNoFile        = errors.New("no file to preview")
)

// Registry maps preview handles to staged files
type Registry struct {
	baseURL string

	mu    sync.RWMutex
	files map[string]*models.StagedFile
}

// NewRegistry creates a registry whose handles are urls under baseURL
func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL: strings.TrimRight(baseURL, "/"),
		files:   make(map[string]*models.StagedFile),
	}
}

// Acquire registers file and returns its handle
func (r *Registry) Acquire(file *models.StagedFile) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}
	handle := r.baseURL + "/" + uuid.New().String()

	r.mu.Lock()
	r.files[handle] = file
	r.mu.Unlock()
	return handle, nil
}

// Release drops a handle. Releasing twice is an error.
func (r *Registry) Release(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[handle]; !ok {
		return ErrUnknownHandle
	}
	delete(r.files, handle)
	return nil
}

// Open resolves a handle id (the last path segment of the handle)
func (r *Registry) Open(id string) (*models.StagedFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.files[r.baseURL+"/"+id]
	return file, ok
}

// Len returns the number of live handles
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}
