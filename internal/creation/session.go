package creation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/satonic/satonic-storefront/internal/models"
)

// ItemCreator performs the actual item creation when a form is submitted
type ItemCreator interface {
	CreateItem(ctx context.Context, form models.NFTFormData) (string, error)
}

// Notifier delivers user facing messages. Delivery is best effort.
type Notifier interface {
	Notify(n models.Notification)
}

// SessionOptions are the collaborators of a Session
type SessionOptions struct {
	Previews PreviewAllocator
	Drafts   KeyValueStore
	Creator  ItemCreator
	Notifier Notifier
	Logger   zerolog.Logger
}

// Session owns one item creation form. All mutation goes through its
// methods, which apply under the session lock in call order.
type Session struct {
	id       string
	previews PreviewAllocator
	drafts   *DraftStore
	creator  ItemCreator
	notifier Notifier
	logger   zerolog.Logger

	mu         sync.Mutex
	form       models.NFTFormData
	step       models.CreationStep
	submitting bool
	closed     bool
	handles    map[string]struct{}
	lastActive time.Time
}

func NewSession(id string, opts SessionOptions) *Session {
	return &Session{
		id:         id,
		previews:   opts.Previews,
		drafts:     NewDraftStore(opts.Drafts, id),
		creator:    opts.Creator,
		notifier:   opts.Notifier,
		logger:     opts.Logger.With().Str("session_id", id).Logger(),
		form:       DefaultFormData(),
		step:       models.StepUpload,
		handles:    make(map[string]struct{}),
		lastActive: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// LastActive returns the time of the last call that touched the form
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Snapshot returns a deep copy of the session state
func (s *Session) Snapshot() models.CreationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.CreationState {
	return models.CreationState{
		SessionID:    s.id,
		Form:         cloneForm(s.form),
		Step:         s.step,
		Completion:   Completion(&s.form),
		IsSubmitting: s.submitting,
	}
}

// Update merges a partial update into the form
func (s *Session) Update(p models.FormPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastActive = time.Now()
	return applyPatch(&s.form, p)
}

// AddAsset stages a file and returns its preview. Rejected files leave the
// form untouched.
func (s *Session) AddAsset(file *models.StagedFile) (models.AssetPreview, error) {
	fileType, err := checkAsset(file)
	if err != nil {
		return models.AssetPreview{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.AssetPreview{}, ErrSessionClosed
	}
	s.lastActive = time.Now()

	handle, err := s.previews.Acquire(file)
	if err != nil {
		return models.AssetPreview{}, fmt.Errorf("failed to allocate preview: %w", err)
	}
	s.handles[handle] = struct{}{}

	preview := models.AssetPreview{
		ID:         uuid.New().String(),
		File:       file,
		FileType:   fileType,
		PreviewURL: handle,
		Name:       file.Name,
		Size:       file.Size,
	}
	s.form.AssetFiles = append(s.form.AssetFiles, file)
	s.form.AssetPreviews = append(s.form.AssetPreviews, preview)

	s.logger.Debug().Str("asset_id", preview.ID).Str("file_type", string(fileType)).Int64("size", file.Size).Msg("asset staged")
	return preview, nil
}

// RemoveAsset removes a staged asset and its file. It reports false for an
// unknown id.
func (s *Session) RemoveAsset(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	index := -1
	for i, p := range s.form.AssetPreviews {
		if p.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return false
	}

	preview := s.form.AssetPreviews[index]
	s.form.AssetPreviews = append(s.form.AssetPreviews[:index:index], s.form.AssetPreviews[index+1:]...)
	if preview.File != nil {
		for i, f := range s.form.AssetFiles {
			if f == preview.File {
				s.form.AssetFiles = append(s.form.AssetFiles[:i:i], s.form.AssetFiles[i+1:]...)
				break
			}
		}
	}
	s.releaseLocked(preview.PreviewURL)
	return true
}

func (s *Session) AddAttribute() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return addAttribute(&s.form)
}

func (s *Session) UpdateAttribute(index int, p models.AttributePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastActive = time.Now()
	return updateAttribute(&s.form, index, p)
}

func (s *Session) RemoveAttribute(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastActive = time.Now()
	return removeAttribute(&s.form, index)
}

// SetCollectionImage stages the logo or banner of the new collection,
// releasing the image it replaces.
func (s *Session) SetCollectionImage(kind CollectionImage, file *models.StagedFile) (string, error) {
	if err := checkCollectionImage(kind, file); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	s.lastActive = time.Now()

	if s.form.CollectionType != models.CollectionTypeNew {
		return "", ErrCollectionNotNew
	}
	if s.form.NewCollection == nil {
		s.form.NewCollection = &models.NewCollection{Categories: []string{}}
	}

	handle, err := s.previews.Acquire(file)
	if err != nil {
		return "", fmt.Errorf("failed to allocate preview: %w", err)
	}
	s.handles[handle] = struct{}{}

	c := s.form.NewCollection
	switch kind {
	case CollectionLogo:
		s.releaseLocked(c.LogoPreview)
		c.LogoFile, c.LogoPreview = file, handle
	case CollectionBanner:
		s.releaseLocked(c.BannerPreview)
		c.BannerFile, c.BannerPreview = file, handle
	}
	return handle, nil
}

// SetStep jumps to a step. Steps after the first need the step before them
// to be complete.
func (s *Session) SetStep(step models.CreationStep) error {
	if _, err := ParseStep(string(step)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastActive = time.Now()

	if !CanEnter(&s.form, step) {
		return fmt.Errorf("%w: cannot enter %s", ErrStepIncomplete, step)
	}
	s.step = step
	return nil
}

// Next advances when the current step is complete
func (s *Session) Next() (models.CreationStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.step, ErrSessionClosed
	}
	s.lastActive = time.Now()

	next, err := NextStep(&s.form, s.step)
	if err != nil {
		return s.step, err
	}
	s.step = next
	return next, nil
}

func (s *Session) Back() models.CreationStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	s.step = PreviousStep(s.step)
	return s.step
}

func (s *Session) IsStepComplete(step models.CreationStep) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return IsStepComplete(&s.form, step)
}

func (s *Session) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Fees returns the cost overview of the current form
func (s *Session) Fees() models.FeeSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CalculateFeeSummary(&s.form)
}

// SaveDraft persists the form without file contents
func (s *Session) SaveDraft(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	form, step := cloneForm(s.form), s.step
	s.lastActive = time.Now()
	s.mu.Unlock()

	savedAt, err := s.drafts.Save(ctx, form, step)
	if err != nil {
		s.logger.Error().Err(err).Msg("draft save failed")
		s.notify(models.NotificationError, "Failed to save draft", "There was an error saving your progress.")
		return err
	}

	s.logger.Info().Str("step", string(step)).Time("saved_at", savedAt).Msg("draft saved")
	s.notify(models.NotificationSuccess, "Draft saved", "Your progress has been saved. You can resume later.")
	return nil
}

// LoadDraft replaces the form with the saved draft. It reports false when
// there is nothing to load. On error the form is left as it was.
//
// A loaded draft carries preview metadata only, so the upload step reads
// as incomplete until files are staged again.
func (s *Session) LoadDraft(ctx context.Context) (bool, error) {
	draft, err := s.drafts.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("draft load failed")
		s.notify(models.NotificationError, "Failed to load draft", "There was an error restoring your progress.")
		return false, err
	}
	if draft == nil {
		return false, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	s.releaseAllLocked()
	s.form = draft.Form
	if draft.Step != "" {
		s.step = draft.Step
	}
	s.lastActive = time.Now()
	s.mu.Unlock()

	s.logger.Info().Time("saved_at", draft.SavedAt).Msg("draft loaded")
	s.notify(models.NotificationInfo, "Draft loaded", "Your saved progress has been restored.")
	return true, nil
}

// Reset discards the form and any saved draft
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.resetLocked()
	s.lastActive = time.Now()
	s.mu.Unlock()

	if err := s.drafts.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// Submit creates the item from the current form. Only one submission runs
// at a time. On success the form is reset and the draft cleared; on failure
// the form is kept for a retry.
func (s *Session) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrSessionClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return "", ErrSubmissionInFlight
	}
	if !IsStepComplete(&s.form, models.StepReview) {
		s.mu.Unlock()
		return "", ErrNotReady
	}
	s.submitting = true
	s.lastActive = time.Now()
	form := cloneForm(s.form)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	itemID, err := s.creator.CreateItem(ctx, form)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn().Err(err).Msg("submission interrupted")
		} else {
			s.logger.Error().Err(err).Msg("submission failed")
		}
		s.notify(models.NotificationError, "Failed to create NFT", "There was an error during the creation process. Please try again.")
		return "", fmt.Errorf("failed to create item: %w", err)
	}

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	if err := s.drafts.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear draft after submission")
	}

	s.logger.Info().Str("item_id", itemID).Msg("item created")
	s.notify(models.NotificationSuccess, "NFT Created Successfully!", "Your NFT has been created and is now listed on the marketplace.")
	return itemID, nil
}

// Close releases every preview handle the session still holds. Calls that
// change the form fail with ErrSessionClosed afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.releaseAllLocked()
}

func (s *Session) resetLocked() {
	s.releaseAllLocked()
	s.form = DefaultFormData()
	s.step = models.StepUpload
}

// releaseLocked releases a handle this session acquired. Handles it does
// not own, such as preview urls restored from a draft, are ignored.
func (s *Session) releaseLocked(handle string) {
	if _, ok := s.handles[handle]; !ok {
		return
	}
	delete(s.handles, handle)
	if err := s.previews.Release(handle); err != nil {
		s.logger.Warn().Err(err).Str("handle", handle).Msg("failed to release preview")
	}
}

func (s *Session) releaseAllLocked() {
	for handle := range s.handles {
		s.releaseLocked(handle)
	}
}

func (s *Session) notify(level models.NotificationLevel, title, description string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(models.Notification{
		SessionID:   s.id,
		Level:       level,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
}
