package creation

import (
	"strings"

	"github.com/satonic/satonic-storefront/internal/models"
)

const minNameLength = 3

// IsStepComplete reports whether the form satisfies the given step. It has
// no side effects and may be evaluated for any step at any time.
func IsStepComplete(form *models.NFTFormData, step models.CreationStep) bool {
	switch step {
	case models.StepUpload:
		for _, p := range form.AssetPreviews {
			if hasLiveFile(p) {
				return true
			}
		}
		return false

	case models.StepDetails:
		return form.Name != "" && len([]rune(strings.TrimSpace(form.Name))) >= minNameLength

	case models.StepCollection:
		if form.CollectionType == models.CollectionTypeNew {
			return form.NewCollection != nil &&
				form.NewCollection.Name != "" &&
				form.NewCollection.Symbol != ""
		}
		return form.ExistingCollectionID != ""

	case models.StepPricing:
		switch form.SaleType {
		case models.SaleTypeFixed:
			return form.Price != nil && *form.Price > 0
		case models.SaleTypeAuction:
			return form.AuctionDetails != nil &&
				form.AuctionDetails.StartingPrice > 0 &&
				form.AuctionDetails.Duration > 0
		case models.SaleTypeOffers:
			return true
		}
		return false

	case models.StepReview:
		return IsStepComplete(form, models.StepUpload) &&
			IsStepComplete(form, models.StepDetails) &&
			IsStepComplete(form, models.StepCollection) &&
			IsStepComplete(form, models.StepPricing)
	}
	return false
}

// Completion evaluates every step, for progress indicators
func Completion(form *models.NFTFormData) map[models.CreationStep]bool {
	out := make(map[models.CreationStep]bool, len(models.CreationSteps))
	for _, step := range models.CreationSteps {
		out[step] = IsStepComplete(form, step)
	}
	return out
}
