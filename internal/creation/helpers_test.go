package creation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/satonic/satonic-storefront/internal/models"
)

// trackingAllocator records every acquire and release so tests can catch
// leaks and double frees.
type trackingAllocator struct {
	mu       sync.Mutex
	next     int
	live     map[string]bool
	released map[string]int
	failNext bool
}

func newTrackingAllocator() *trackingAllocator {
	return &trackingAllocator{live: map[string]bool{}, released: map[string]int{}}
}

func (a *trackingAllocator) Acquire(file *models.StagedFile) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failNext {
		a.failNext = false
		return "", errors.New("allocator exhausted")
	}
	a.next++
	handle := fmt.Sprintf("preview://%d", a.next)
	a.live[handle] = true
	return handle, nil
}

func (a *trackingAllocator) Release(handle string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.released[handle]++
	if !a.live[handle] {
		return fmt.Errorf("release of unknown handle %s", handle)
	}
	delete(a.live, handle)
	return nil
}

func (a *trackingAllocator) liveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

func (a *trackingAllocator) assertNoDoubleRelease(t *testing.T) {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	for handle, n := range a.released {
		if n != 1 {
			t.Fatalf("handle %s released %d times", handle, n)
		}
	}
}

type mapKV struct {
	mu      sync.Mutex
	data    map[string]string
	failSet error
	failGet error
}

func newMapKV() *mapKV {
	return &mapKV{data: map[string]string{}}
}

func (m *mapKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return "", false, m.failGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

func (m *mapKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(msg models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) last() models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return models.Notification{}
	}
	return n.sent[len(n.sent)-1]
}

type stubCreator struct {
	started chan struct{}
	proceed chan struct{}
	err     error
	calls   int
	mu      sync.Mutex
}

func (c *stubCreator) CreateItem(ctx context.Context, form models.NFTFormData) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.started != nil {
		close(c.started)
	}
	if c.proceed != nil {
		select {
		case <-c.proceed:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if c.err != nil {
		return "", c.err
	}
	return "item-" + form.Name, nil
}

type testSession struct {
	*Session
	previews *trackingAllocator
	kv       *mapKV
	creator  *stubCreator
	notifier *recordingNotifier
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	ts := &testSession{
		previews: newTrackingAllocator(),
		kv:       newMapKV(),
		creator:  &stubCreator{},
		notifier: &recordingNotifier{},
	}
	ts.Session = NewSession("sess-1", SessionOptions{
		Previews: ts.previews,
		Drafts:   ts.kv,
		Creator:  ts.creator,
		Notifier: ts.notifier,
		Logger:   zerolog.Nop(),
	})
	return ts
}

func imageFile(name string) *models.StagedFile {
	return &models.StagedFile{Name: name, ContentType: "image/png", Size: 1024, Data: []byte("png")}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func readyForReview(t *testing.T, s *testSession) {
	t.Helper()
	if _, err := s.AddAsset(imageFile("art.png")); err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	err := s.Update(models.FormPatch{
		Name:                 strPtr("Genesis"),
		ExistingCollectionID: strPtr("1"),
		Price:                models.Some(0.5),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
}
