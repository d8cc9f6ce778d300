package creation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/satonic/satonic-storefront/internal/models"
)

func assertLockstep(t *testing.T, form models.NFTFormData) {
	t.Helper()
	if len(form.AssetFiles) != len(form.AssetPreviews) {
		t.Fatalf("files=%d previews=%d", len(form.AssetFiles), len(form.AssetPreviews))
	}
	for i := range form.AssetFiles {
		if form.AssetPreviews[i].File != form.AssetFiles[i] {
			t.Fatalf("preview %d does not match file order", i)
		}
	}
}

func TestAddRemoveAssetsStayInLockstep(t *testing.T) {
	s := newTestSession(t)

	var ids []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		p, err := s.AddAsset(imageFile(name))
		if err != nil {
			t.Fatalf("AddAsset(%s): %v", name, err)
		}
		ids = append(ids, p.ID)
		assertLockstep(t, s.Snapshot().Form)
	}

	if !s.RemoveAsset(ids[1]) {
		t.Fatalf("RemoveAsset returned false")
	}
	form := s.Snapshot().Form
	assertLockstep(t, form)
	if len(form.AssetPreviews) != 2 || form.AssetPreviews[1].Name != "c.png" {
		t.Fatalf("unexpected previews after removal: %+v", form.AssetPreviews)
	}

	if s.RemoveAsset("missing") {
		t.Fatalf("RemoveAsset reported success for an unknown id")
	}
	if s.RemoveAsset(ids[1]) {
		t.Fatalf("RemoveAsset removed the same id twice")
	}

	if s.previews.liveCount() != 2 {
		t.Fatalf("live handles = %d, want 2", s.previews.liveCount())
	}
	s.previews.assertNoDoubleRelease(t)
}

func TestUploadGateFollowsStagedAssets(t *testing.T) {
	s := newTestSession(t)
	if s.IsStepComplete(models.StepUpload) {
		t.Fatalf("upload complete without assets")
	}
	p, err := s.AddAsset(imageFile("a.png"))
	if err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	if !s.IsStepComplete(models.StepUpload) {
		t.Fatalf("upload incomplete with an asset")
	}
	s.RemoveAsset(p.ID)
	if s.IsStepComplete(models.StepUpload) {
		t.Fatalf("upload complete after removal")
	}
}

func TestAddAssetRejections(t *testing.T) {
	tests := []struct {
		name string
		file *models.StagedFile
		want error
	}{
		{"too large", &models.StagedFile{Name: "big.mp4", ContentType: "video/mp4", Size: MaxAssetBytes + 1}, ErrFileTooLarge},
		{"unsupported", &models.StagedFile{Name: "doc.pdf", ContentType: "application/pdf", Size: 10}, ErrUnsupportedFileType},
		{"empty", &models.StagedFile{Name: "void.png", ContentType: "image/png"}, ErrEmptyFile},
		{"nil", nil, ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			if _, err := s.AddAsset(tt.file); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			form := s.Snapshot().Form
			if len(form.AssetFiles) != 0 || len(form.AssetPreviews) != 0 {
				t.Fatalf("rejected file was staged")
			}
			if s.previews.liveCount() != 0 {
				t.Fatalf("handle leaked for rejected file")
			}
		})
	}
}

func TestAddAssetAllocatorFailure(t *testing.T) {
	s := newTestSession(t)
	s.previews.failNext = true
	if _, err := s.AddAsset(imageFile("a.png")); err == nil {
		t.Fatalf("expected allocator failure")
	}
	assertLockstep(t, s.Snapshot().Form)
	if n := len(s.Snapshot().Form.AssetPreviews); n != 0 {
		t.Fatalf("previews = %d, want 0", n)
	}
}

func TestClassifyFileType(t *testing.T) {
	tests := []struct {
		contentType string
		want        models.FileType
	}{
		{"image/png", models.FileTypeImage},
		{"IMAGE/JPEG", models.FileTypeImage},
		{"video/mp4", models.FileTypeVideo},
		{"audio/mpeg", models.FileTypeAudio},
		{"model/gltf-binary", models.FileTypeModel},
		{"model/gltf+json", models.FileTypeModel},
		{"application/octet-stream+glb", models.FileTypeModel},
	}
	for _, tt := range tests {
		got, err := ClassifyFileType(tt.contentType)
		if err != nil {
			t.Fatalf("ClassifyFileType(%s): %v", tt.contentType, err)
		}
		if got != tt.want {
			t.Fatalf("ClassifyFileType(%s) = %s, want %s", tt.contentType, got, tt.want)
		}
	}
	if _, err := ClassifyFileType("text/plain"); !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("text/plain err = %v", err)
	}
}

func TestCollectionImages(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.SetCollectionImage(CollectionLogo, imageFile("logo.png")); !errors.Is(err, ErrCollectionNotNew) {
		t.Fatalf("logo on existing collection err = %v", err)
	}

	newType := models.CollectionTypeNew
	if err := s.Update(models.FormPatch{CollectionType: &newType}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	big := &models.StagedFile{Name: "logo.png", ContentType: "image/png", Size: MaxLogoBytes + 1}
	if _, err := s.SetCollectionImage(CollectionLogo, big); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("oversized logo err = %v", err)
	}
	video := &models.StagedFile{Name: "banner.mp4", ContentType: "video/mp4", Size: 100}
	if _, err := s.SetCollectionImage(CollectionBanner, video); !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("video banner err = %v", err)
	}

	first, err := s.SetCollectionImage(CollectionLogo, imageFile("logo.png"))
	if err != nil {
		t.Fatalf("SetCollectionImage: %v", err)
	}
	second, err := s.SetCollectionImage(CollectionLogo, imageFile("logo2.png"))
	if err != nil {
		t.Fatalf("SetCollectionImage: %v", err)
	}
	if s.previews.released[first] != 1 {
		t.Fatalf("replaced logo not released")
	}
	if got := s.Snapshot().Form.NewCollection.LogoPreview; got != second {
		t.Fatalf("logo preview = %q, want %q", got, second)
	}

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.previews.liveCount() != 0 {
		t.Fatalf("reset leaked %d handles", s.previews.liveCount())
	}
	s.previews.assertNoDoubleRelease(t)
}

func TestResetReleasesEverything(t *testing.T) {
	s := newTestSession(t)
	readyForReview(t, s)
	_, _ = s.AddAsset(imageFile("b.png"))
	if err := s.SaveDraft(context.Background()); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	state := s.Snapshot()
	if state.Step != models.StepUpload || state.Form.Name != "" || len(state.Form.AssetPreviews) != 0 {
		t.Fatalf("form not reset: %+v", state)
	}
	if s.previews.liveCount() != 0 {
		t.Fatalf("live handles after reset = %d", s.previews.liveCount())
	}
	if len(s.kv.data) != 0 {
		t.Fatalf("draft keys survived reset: %v", s.kv.data)
	}
	s.previews.assertNoDoubleRelease(t)
}

func TestConcurrentUpdatesCompose(t *testing.T) {
	s := newTestSession(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Update(models.FormPatch{Name: strPtr("Name")})
		}()
		go func() {
			defer wg.Done()
			s.AddAttribute()
		}()
	}
	wg.Wait()

	form := s.Snapshot().Form
	if form.Name != "Name" || len(form.Attributes) != 50 {
		t.Fatalf("lost updates: name=%q attributes=%d", form.Name, len(form.Attributes))
	}
}

func TestSubmitRequiresReview(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
	if s.creator.calls != 0 {
		t.Fatalf("creator called for an incomplete form")
	}
}

func TestSubmitSuccessResetsForm(t *testing.T) {
	s := newTestSession(t)
	readyForReview(t, s)
	if err := s.SaveDraft(context.Background()); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	id, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "item-Genesis" {
		t.Fatalf("item id = %q", id)
	}

	state := s.Snapshot()
	if state.IsSubmitting || state.Step != models.StepUpload || state.Form.Name != "" {
		t.Fatalf("state after submit = %+v", state)
	}
	if s.previews.liveCount() != 0 {
		t.Fatalf("handles leaked after submit")
	}
	if len(s.kv.data) != 0 {
		t.Fatalf("drafts not cleared: %v", s.kv.data)
	}
	if n := s.notifier.last(); n.Level != models.NotificationSuccess {
		t.Fatalf("notification = %+v", n)
	}
	s.previews.assertNoDoubleRelease(t)
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	s := newTestSession(t)
	readyForReview(t, s)
	s.creator.err = errors.New("backend unavailable")

	if _, err := s.Submit(context.Background()); err == nil {
		t.Fatalf("expected submit failure")
	}
	state := s.Snapshot()
	if state.IsSubmitting {
		t.Fatalf("isSubmitting stuck after failure")
	}
	if state.Form.Name != "Genesis" || len(state.Form.AssetPreviews) != 1 {
		t.Fatalf("form changed after failure: %+v", state.Form)
	}
	if s.previews.liveCount() != 1 {
		t.Fatalf("handles released after failure")
	}
	if n := s.notifier.last(); n.Level != models.NotificationError {
		t.Fatalf("notification = %+v", n)
	}
}

func TestSubmitSingleFlight(t *testing.T) {
	s := newTestSession(t)
	readyForReview(t, s)
	s.creator.started = make(chan struct{})
	s.creator.proceed = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	<-s.creator.started
	if !s.IsSubmitting() {
		t.Fatalf("isSubmitting not set during submission")
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("second submit err = %v", err)
	}

	close(s.creator.proceed)
	if err := <-done; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.creator.calls != 1 {
		t.Fatalf("creator calls = %d, want 1", s.creator.calls)
	}
}

func TestSubmitCancellationClearsFlag(t *testing.T) {
	s := newTestSession(t)
	readyForReview(t, s)
	s.creator.started = make(chan struct{})
	s.creator.proceed = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(ctx)
		done <- err
	}()

	<-s.creator.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("submit did not return after cancellation")
	}
	if s.IsSubmitting() {
		t.Fatalf("isSubmitting stuck after cancellation")
	}
	if s.Snapshot().Form.Name != "Genesis" {
		t.Fatalf("form lost after cancellation")
	}
}

func TestCloseReleasesHandles(t *testing.T) {
	s := newTestSession(t)
	_, _ = s.AddAsset(imageFile("a.png"))
	_, _ = s.AddAsset(imageFile("b.png"))
	s.Close()
	if s.previews.liveCount() != 0 {
		t.Fatalf("Close leaked handles")
	}
	s.previews.assertNoDoubleRelease(t)
}

func TestClosedSessionRejectsChanges(t *testing.T) {
	s := newTestSession(t)
	newType := models.CollectionTypeNew
	if err := s.Update(models.FormPatch{CollectionType: &newType}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	s.Close()

	ctx := context.Background()
	errOf := func(_ interface{}, err error) error { return err }
	calls := []struct {
		name string
		call func() error
	}{
		{"update", func() error { return s.Update(models.FormPatch{Name: strPtr("late")}) }},
		{"add asset", func() error { return errOf(s.AddAsset(imageFile("late.png"))) }},
		{"collection image", func() error { return errOf(s.SetCollectionImage(CollectionLogo, imageFile("logo.png"))) }},
		{"update attribute", func() error { return s.UpdateAttribute(0, models.AttributePatch{}) }},
		{"remove attribute", func() error { return s.RemoveAttribute(0) }},
		{"set step", func() error { return s.SetStep(models.StepUpload) }},
		{"next", func() error { return errOf(s.Next()) }},
		{"save draft", func() error { return s.SaveDraft(ctx) }},
		{"reset", func() error { return s.Reset(ctx) }},
		{"submit", func() error { return errOf(s.Submit(ctx)) }},
	}
	for _, c := range calls {
		if err := c.call(); !errors.Is(err, ErrSessionClosed) {
			t.Fatalf("%s: err = %v, want ErrSessionClosed", c.name, err)
		}
	}

	if s.previews.liveCount() != 0 {
		t.Fatalf("closed session acquired %d handles", s.previews.liveCount())
	}
	if s.Snapshot().Form.Name != "" {
		t.Fatalf("closed session form was changed")
	}
}
