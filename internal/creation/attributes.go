package creation

import (
	"fmt"

	"github.com/satonic/satonic-storefront/internal/models"
)

func addAttribute(form *models.NFTFormData) int {
	form.Attributes = append(form.Attributes, models.NFTAttribute{
		DisplayType: models.DisplayTypeString,
	})
	return len(form.Attributes) - 1
}

// updateAttribute merges p into the attribute at index. An out of range
// index leaves the list untouched.
func updateAttribute(form *models.NFTFormData, index int, p models.AttributePatch) error {
	if index < 0 || index >= len(form.Attributes) {
		return fmt.Errorf("%w: %d", ErrAttributeIndex, index)
	}
	if p.DisplayType != nil && !validDisplayType(*p.DisplayType) {
		return fmt.Errorf("%w: displayType %q", ErrInvalidField, *p.DisplayType)
	}

	attr := form.Attributes[index]
	if p.TraitType != nil {
		attr.TraitType = *p.TraitType
	}
	if p.Value != nil {
		attr.Value = *p.Value
	}
	if p.DisplayType != nil {
		attr.DisplayType = *p.DisplayType
	}
	form.Attributes[index] = attr
	return nil
}

func removeAttribute(form *models.NFTFormData, index int) error {
	if index < 0 || index >= len(form.Attributes) {
		return fmt.Errorf("%w: %d", ErrAttributeIndex, index)
	}
	form.Attributes = append(form.Attributes[:index:index], form.Attributes[index+1:]...)
	return nil
}
