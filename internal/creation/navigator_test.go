package creation

import (
	"errors"
	"testing"

	"github.com/satonic/satonic-storefront/internal/models"
)

func TestNavigatorWalk(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.Next(); !errors.Is(err, ErrStepIncomplete) {
		t.Fatalf("next on empty upload err = %v", err)
	}
	if got := s.Back(); got != models.StepUpload {
		t.Fatalf("back from upload = %s", got)
	}

	readyForReview(t, s)
	want := []models.CreationStep{models.StepDetails, models.StepCollection, models.StepPricing, models.StepReview, models.StepReview}
	for _, step := range want {
		got, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != step {
			t.Fatalf("step = %s, want %s", got, step)
		}
	}

	if got := s.Back(); got != models.StepPricing {
		t.Fatalf("back from review = %s", got)
	}
}

func TestSetStepRequiresPreviousStep(t *testing.T) {
	s := newTestSession(t)

	if err := s.SetStep(models.StepDetails); !errors.Is(err, ErrStepIncomplete) {
		t.Fatalf("SetStep details err = %v", err)
	}
	if err := s.SetStep(models.CreationStep("mint")); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("SetStep unknown err = %v", err)
	}

	if _, err := s.AddAsset(imageFile("a.png")); err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	if err := s.SetStep(models.StepDetails); err != nil {
		t.Fatalf("SetStep details: %v", err)
	}
	if err := s.SetStep(models.StepUpload); err != nil {
		t.Fatalf("SetStep upload: %v", err)
	}
	if got := s.Snapshot().Step; got != models.StepUpload {
		t.Fatalf("step = %s", got)
	}
}
