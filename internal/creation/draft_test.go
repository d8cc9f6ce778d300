package creation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/satonic/satonic-storefront/internal/models"
)

func TestDraftRoundTrip(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	preview, err := s.AddAsset(imageFile("art.png"))
	if err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	if err := s.Update(models.FormPatch{Name: strPtr("X")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.SetStep(models.StepDetails); err != nil {
		t.Fatalf("SetStep: %v", err)
	}
	if err := s.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	// Reset clears the stored draft, so keep a copy to restore afterwards.
	saved := make(map[string]string, len(s.kv.data))
	for k, v := range s.kv.data {
		saved[k] = v
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	s.kv.data = saved

	ok, err := s.LoadDraft(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadDraft = %v, %v", ok, err)
	}

	state := s.Snapshot()
	if state.Form.Name != "X" {
		t.Fatalf("name = %q, want X", state.Form.Name)
	}
	if state.Step != models.StepDetails {
		t.Fatalf("step = %s, want details", state.Step)
	}
	if len(state.Form.AssetPreviews) != 1 {
		t.Fatalf("previews = %d, want 1", len(state.Form.AssetPreviews))
	}
	restored := state.Form.AssetPreviews[0]
	if restored.ID != preview.ID || restored.Name != "art.png" || restored.Size != 1024 || restored.FileType != models.FileTypeImage {
		t.Fatalf("preview metadata lost: %+v", restored)
	}
	if restored.File != nil || len(state.Form.AssetFiles) != 0 {
		t.Fatalf("file contents restored from a draft")
	}
	if state.Completion[models.StepUpload] {
		t.Fatalf("upload must read incomplete after a reload")
	}
	if n := s.notifier.last(); n.Level != models.NotificationInfo || n.Title != "Draft loaded" {
		t.Fatalf("notification = %+v", n)
	}

	// Restored previews were never acquired by this session.
	s.RemoveAsset(restored.ID)
	s.previews.assertNoDoubleRelease(t)
}

func TestDraftPayloadOmitsFiles(t *testing.T) {
	s := newTestSession(t)
	_, _ = s.AddAsset(imageFile("art.png"))
	if err := s.SaveDraft(context.Background()); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(s.kv.data["draft:sess-1:nftDraft"]), &payload); err != nil {
		t.Fatalf("draft payload: %v", err)
	}
	if files, _ := payload["assetFiles"].([]any); len(files) != 0 {
		t.Fatalf("assetFiles persisted: %v", payload["assetFiles"])
	}
	previews, _ := payload["assetPreviews"].([]any)
	if len(previews) != 1 {
		t.Fatalf("previews = %v", payload["assetPreviews"])
	}
	if file := previews[0].(map[string]any)["file"]; file != nil {
		t.Fatalf("preview file persisted: %v", file)
	}

	if s.kv.data["draft:sess-1:nftDraftStep"] != "upload" {
		t.Fatalf("step key = %q", s.kv.data["draft:sess-1:nftDraftStep"])
	}
	if _, err := time.Parse(time.RFC3339, s.kv.data["draft:sess-1:nftDraftTimestamp"]); err != nil {
		t.Fatalf("timestamp: %v", err)
	}
}

func TestLoadDraftMissing(t *testing.T) {
	s := newTestSession(t)
	ok, err := s.LoadDraft(context.Background())
	if err != nil || ok {
		t.Fatalf("LoadDraft = %v, %v; want false, nil", ok, err)
	}
}

func TestLoadDraftFillsDefaults(t *testing.T) {
	s := newTestSession(t)
	s.kv.data["draft:sess-1:nftDraft"] = `{"name":"Legacy","royaltyPercentage":99}`

	if ok, err := s.LoadDraft(context.Background()); err != nil || !ok {
		t.Fatalf("LoadDraft = %v, %v", ok, err)
	}
	form := s.Snapshot().Form
	if form.Name != "Legacy" || form.Currency != "ETH" || form.Supply != 1 {
		t.Fatalf("defaults not applied: %+v", form)
	}
	if form.RoyaltyPercentage != MaxRoyaltyPercentage {
		t.Fatalf("royalty = %v, want clamp", form.RoyaltyPercentage)
	}
	if s.Snapshot().Step != models.StepUpload {
		t.Fatalf("missing step key changed the step")
	}
}

func TestLoadDraftFailureLeavesState(t *testing.T) {
	s := newTestSession(t)
	_ = s.Update(models.FormPatch{Name: strPtr("Current")})
	_, _ = s.AddAsset(imageFile("a.png"))

	s.kv.data["draft:sess-1:nftDraft"] = `{"name":`
	if _, err := s.LoadDraft(context.Background()); err == nil {
		t.Fatalf("expected decode failure")
	}
	state := s.Snapshot()
	if state.Form.Name != "Current" || len(state.Form.AssetFiles) != 1 {
		t.Fatalf("failed load mutated state: %+v", state.Form)
	}
	if s.previews.liveCount() != 1 {
		t.Fatalf("failed load released handles")
	}
	if n := s.notifier.last(); n.Level != models.NotificationError {
		t.Fatalf("notification = %+v", n)
	}

	s.kv.failGet = errors.New("store offline")
	if _, err := s.LoadDraft(context.Background()); err == nil {
		t.Fatalf("expected store failure")
	}
}

func TestSaveDraftFailureIsReported(t *testing.T) {
	s := newTestSession(t)
	s.kv.failSet = errors.New("quota exceeded")

	if err := s.SaveDraft(context.Background()); err == nil {
		t.Fatalf("expected save failure")
	}
	if n := s.notifier.last(); n.Level != models.NotificationError || n.Title != "Failed to save draft" {
		t.Fatalf("notification = %+v", n)
	}
}

func TestLoadDraftReleasesReplacedHandles(t *testing.T) {
	s := newTestSession(t)
	_ = s.SaveDraft(context.Background())
	_, _ = s.AddAsset(imageFile("a.png"))

	if ok, err := s.LoadDraft(context.Background()); err != nil || !ok {
		t.Fatalf("LoadDraft = %v, %v", ok, err)
	}
	if s.previews.liveCount() != 0 {
		t.Fatalf("replaced form leaked %d handles", s.previews.liveCount())
	}
	s.previews.assertNoDoubleRelease(t)
}

func TestDraftStoreClear(t *testing.T) {
	kv := newMapKV()
	store := NewDraftStore(kv, "abc")
	if _, err := store.Save(context.Background(), DefaultFormData(), models.StepPricing); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(kv.data) != 3 {
		t.Fatalf("keys = %d, want 3", len(kv.data))
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(kv.data) != 0 {
		t.Fatalf("keys left after clear: %v", kv.data)
	}
}
