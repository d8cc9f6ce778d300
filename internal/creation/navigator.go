package creation

import (
	"fmt"

	"github.com/satonic/satonic-storefront/internal/models"
)

// ParseStep validates a step name
func ParseStep(s string) (models.CreationStep, error) {
	step := models.CreationStep(s)
	if stepIndex(step) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
	return step, nil
}

func stepIndex(step models.CreationStep) int {
	for i, s := range models.CreationSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// NextStep returns the step after current. The current step must be
// complete; the review step has no successor and is returned unchanged.
func NextStep(form *models.NFTFormData, current models.CreationStep) (models.CreationStep, error) {
	i := stepIndex(current)
	if i < 0 {
		return current, fmt.Errorf("%w: %q", ErrUnknownStep, current)
	}
	if !IsStepComplete(form, current) {
		return current, fmt.Errorf("%w: %s", ErrStepIncomplete, current)
	}
	if i == len(models.CreationSteps)-1 {
		return current, nil
	}
	return models.CreationSteps[i+1], nil
}

// PreviousStep returns the step before current, or current on the first step
func PreviousStep(current models.CreationStep) models.CreationStep {
	i := stepIndex(current)
	if i <= 0 {
		return models.StepUpload
	}
	return models.CreationSteps[i-1]
}

// CanEnter reports whether a step may be jumped to directly: the first step
// always, any other once the step before it is complete.
func CanEnter(form *models.NFTFormData, step models.CreationStep) bool {
	i := stepIndex(step)
	if i < 0 {
		return false
	}
	if i == 0 {
		return true
	}
	return IsStepComplete(form, models.CreationSteps[i-1])
}
