package creation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/satonic/satonic-storefront/internal/models"
)

// Draft storage keys, namespaced per session
const (
	DraftKey          = "nftDraft"
	DraftStepKey      = "nftDraftStep"
	DraftTimestampKey = "nftDraftTimestamp"
)

// KeyValueStore is the durable string store drafts are written to. Get
// reports ok=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Draft is a saved form without its file contents
type Draft struct {
	Form    models.NFTFormData
	Step    models.CreationStep
	SavedAt time.Time
}

// DraftStore reads and writes the draft of one session
type DraftStore struct {
	kv     KeyValueStore
	prefix string
	now    func() time.Time
}

func NewDraftStore(kv KeyValueStore, sessionID string) *DraftStore {
	return &DraftStore{
		kv:     kv,
		prefix: "draft:" + sessionID + ":",
		now:    time.Now,
	}
}

func (d *DraftStore) key(name string) string {
	return d.prefix + name
}

// Save writes the form, the current step and a timestamp
func (d *DraftStore) Save(ctx context.Context, form models.NFTFormData, step models.CreationStep) (time.Time, error) {
	payload, err := json.Marshal(stripFiles(form))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to encode draft: %w", err)
	}

	savedAt := d.now().UTC()
	if err := d.kv.Set(ctx, d.key(DraftKey), string(payload)); err != nil {
		return time.Time{}, fmt.Errorf("failed to store draft: %w", err)
	}
	if err := d.kv.Set(ctx, d.key(DraftStepKey), string(step)); err != nil {
		return time.Time{}, fmt.Errorf("failed to store draft step: %w", err)
	}
	if err := d.kv.Set(ctx, d.key(DraftTimestampKey), savedAt.Format(time.RFC3339)); err != nil {
		return time.Time{}, fmt.Errorf("failed to store draft timestamp: %w", err)
	}
	return savedAt, nil
}

// Load returns nil, nil when no draft was saved. Fields missing from an
// older draft keep their defaults.
func (d *DraftStore) Load(ctx context.Context) (*Draft, error) {
	payload, ok, err := d.kv.Get(ctx, d.key(DraftKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}
	if !ok || payload == "" {
		return nil, nil
	}

	form := DefaultFormData()
	if err := json.Unmarshal([]byte(payload), &form); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	form = stripFiles(form)
	normalizeForm(&form)

	draft := &Draft{Form: form}

	stepValue, ok, err := d.kv.Get(ctx, d.key(DraftStepKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read draft step: %w", err)
	}
	if ok {
		if step, err := ParseStep(stepValue); err == nil {
			draft.Step = step
		}
	}

	stamp, ok, err := d.kv.Get(ctx, d.key(DraftTimestampKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read draft timestamp: %w", err)
	}
	if ok {
		if t, err := time.Parse(time.RFC3339, stamp); err == nil {
			draft.SavedAt = t
		}
	}
	return draft, nil
}

// Clear removes all draft keys
func (d *DraftStore) Clear(ctx context.Context) error {
	for _, name := range []string{DraftKey, DraftStepKey, DraftTimestampKey} {
		if err := d.kv.Remove(ctx, d.key(name)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// stripFiles drops everything that cannot be persisted. Preview metadata
// survives with its file reference nulled.
func stripFiles(form models.NFTFormData) models.NFTFormData {
	out := cloneForm(form)
	out.AssetFiles = []*models.StagedFile{}
	for i := range out.AssetPreviews {
		out.AssetPreviews[i].File = nil
	}
	if out.NewCollection != nil {
		out.NewCollection.LogoFile = nil
		out.NewCollection.BannerFile = nil
	}
	return out
}
