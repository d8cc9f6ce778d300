package creation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/satonic/satonic-storefront/internal/models"
)

const (
	MaxRoyaltyPercentage = 15.0
	MaxSymbolLength      = 10
	MaxCategories        = 3

	DefaultAuctionStartingPrice = 0.1
	DefaultAuctionDuration      = 7
)

// AuctionDurations are the selectable auction lengths in days
var AuctionDurations = []int{1, 3, 7, 14, 30, 90}

// CollectionCategories are the categories a new collection may pick from
var CollectionCategories = []string{
	"Art", "Collectibles", "Domain Names", "Music", "Photography",
	"Sports", "Trading Cards", "Utility", "Virtual Worlds",
}

// DefaultFormData returns the form as it looks when the flow is entered
func DefaultFormData() models.NFTFormData {
	return models.NFTFormData{
		AssetFiles:        []*models.StagedFile{},
		AssetPreviews:     []models.AssetPreview{},
		Attributes:        []models.NFTAttribute{},
		CollectionType:    models.CollectionTypeExisting,
		SaleType:          models.SaleTypeFixed,
		Currency:          "ETH",
		RoyaltyPercentage: 10,
		RoyaltySplits:     []models.RoyaltySplit{},
		Blockchain:        models.BlockchainEthereum,
		Supply:            1,
	}
}

// applyPatch validates p and then merges it into form. Nothing is changed
// when validation fails.
func applyPatch(form *models.NFTFormData, p models.FormPatch) error {
	if err := validatePatch(form, p); err != nil {
		return err
	}

	if p.Name != nil {
		form.Name = *p.Name
	}
	if p.Description != nil {
		form.Description = *p.Description
	}
	if p.ExternalLink != nil {
		form.ExternalLink = strings.TrimSpace(*p.ExternalLink)
	}
	if p.AlternativeText != nil {
		form.AlternativeText = *p.AlternativeText
	}
	if p.Attributes != nil {
		form.Attributes = append([]models.NFTAttribute{}, (*p.Attributes)...)
		for i := range form.Attributes {
			if form.Attributes[i].DisplayType == "" {
				form.Attributes[i].DisplayType = models.DisplayTypeString
			}
		}
	}
	if p.HasUnlockableContent != nil {
		form.HasUnlockableContent = *p.HasUnlockableContent
	}
	if p.UnlockableContent != nil {
		form.UnlockableContent = *p.UnlockableContent
	}

	if p.ExistingCollectionID != nil {
		form.ExistingCollectionID = strings.TrimSpace(*p.ExistingCollectionID)
	}
	if p.NewCollection != nil {
		next := cloneNewCollection(p.NewCollection)
		// Staged images are owned by SetCollectionImage.
		next.LogoFile, next.LogoPreview = nil, ""
		next.BannerFile, next.BannerPreview = nil, ""
		if form.NewCollection != nil {
			next.LogoFile, next.LogoPreview = form.NewCollection.LogoFile, form.NewCollection.LogoPreview
			next.BannerFile, next.BannerPreview = form.NewCollection.BannerFile, form.NewCollection.BannerPreview
		}
		normalizeNewCollection(next)
		form.NewCollection = next
	}
	if p.CollectionType != nil {
		form.CollectionType = *p.CollectionType
		if form.CollectionType == models.CollectionTypeNew && form.NewCollection == nil {
			form.NewCollection = &models.NewCollection{Categories: []string{}}
		}
	}

	if p.Price.Set {
		form.Price = copyPtr(p.Price.Value)
	}
	if p.Currency != nil {
		form.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.AuctionDetails != nil {
		form.AuctionDetails = cloneAuctionDetails(p.AuctionDetails)
	}
	if p.MinimumOffer.Set {
		form.MinimumOffer = copyPtr(p.MinimumOffer.Value)
	}
	if p.SaleType != nil {
		form.SaleType = *p.SaleType
		if form.SaleType == models.SaleTypeAuction && form.AuctionDetails == nil {
			form.AuctionDetails = &models.AuctionDetails{
				StartingPrice: DefaultAuctionStartingPrice,
				Duration:      DefaultAuctionDuration,
			}
		}
	}

	if p.ScheduledListing != nil {
		form.ScheduledListing = *p.ScheduledListing
	}
	if p.StartDate.Set {
		form.StartDate = copyPtr(p.StartDate.Value)
	}
	if p.EndDate.Set {
		form.EndDate = copyPtr(p.EndDate.Value)
	}

	if p.RoyaltyPercentage != nil {
		form.RoyaltyPercentage = *p.RoyaltyPercentage
	}
	if p.SplitRoyalties != nil {
		form.SplitRoyalties = *p.SplitRoyalties
	}
	if p.RoyaltySplits != nil {
		form.RoyaltySplits = append([]models.RoyaltySplit{}, (*p.RoyaltySplits)...)
	}

	if p.Blockchain != nil {
		form.Blockchain = *p.Blockchain
	}
	if p.LazyMint != nil {
		form.LazyMint = *p.LazyMint
	}
	if p.FreezeMetadata != nil {
		form.FreezeMetadata = *p.FreezeMetadata
	}
	if p.Supply != nil {
		form.Supply = *p.Supply
	}

	normalizeForm(form)
	return nil
}

func validatePatch(form *models.NFTFormData, p models.FormPatch) error {
	if p.CollectionType != nil && !validCollectionType(*p.CollectionType) {
		return fmt.Errorf("%w: collectionType %q", ErrInvalidField, *p.CollectionType)
	}
	if p.SaleType != nil && !validSaleType(*p.SaleType) {
		return fmt.Errorf("%w: saleType %q", ErrInvalidField, *p.SaleType)
	}
	if p.Blockchain != nil && !validBlockchain(*p.Blockchain) {
		return fmt.Errorf("%w: blockchain %q", ErrInvalidField, *p.Blockchain)
	}
	if p.Price.Value != nil && *p.Price.Value < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidField)
	}
	if p.MinimumOffer.Value != nil && *p.MinimumOffer.Value < 0 {
		return fmt.Errorf("%w: minimumOffer must not be negative", ErrInvalidField)
	}
	if p.Currency != nil && strings.TrimSpace(*p.Currency) == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidField)
	}
	if d := p.AuctionDetails; d != nil {
		if d.StartingPrice < 0 {
			return fmt.Errorf("%w: startingPrice must not be negative", ErrInvalidField)
		}
		if d.ReservePrice != nil && *d.ReservePrice < 0 {
			return fmt.Errorf("%w: reservePrice must not be negative", ErrInvalidField)
		}
		if d.Duration != 0 && !validDuration(d.Duration) {
			return fmt.Errorf("%w: duration %d days", ErrInvalidField, d.Duration)
		}
	}
	if p.Attributes != nil {
		for i, attr := range *p.Attributes {
			if attr.DisplayType != "" && !validDisplayType(attr.DisplayType) {
				return fmt.Errorf("%w: attributes[%d].displayType %q", ErrInvalidField, i, attr.DisplayType)
			}
		}
	}
	if p.NewCollection != nil {
		for _, category := range p.NewCollection.Categories {
			if !validCategory(strings.TrimSpace(category)) {
				return fmt.Errorf("%w: category %q", ErrInvalidField, category)
			}
		}
	}
	if p.RoyaltySplits != nil {
		for i, split := range *p.RoyaltySplits {
			if split.Percentage < 0 {
				return fmt.Errorf("%w: royaltySplits[%d].percentage must not be negative", ErrInvalidField, i)
			}
		}
	}

	start, end := form.StartDate, form.EndDate
	if p.StartDate.Set {
		start = p.StartDate.Value
	}
	if p.EndDate.Set {
		end = p.EndDate.Value
	}
	if (p.StartDate.Value != nil || p.EndDate.Value != nil) && start != nil && end != nil && !end.After(*start) {
		return fmt.Errorf("%w: endDate must be after startDate", ErrInvalidField)
	}
	return nil
}

// normalizeForm enforces the clamps every form must satisfy
func normalizeForm(form *models.NFTFormData) {
	form.RoyaltyPercentage = clampRoyalty(form.RoyaltyPercentage)
	if form.Supply < 1 {
		form.Supply = 1
	}
	if form.AssetFiles == nil {
		form.AssetFiles = []*models.StagedFile{}
	}
	if form.AssetPreviews == nil {
		form.AssetPreviews = []models.AssetPreview{}
	}
	if form.Attributes == nil {
		form.Attributes = []models.NFTAttribute{}
	}
	if form.RoyaltySplits == nil {
		form.RoyaltySplits = []models.RoyaltySplit{}
	}
	if form.NewCollection != nil {
		normalizeNewCollection(form.NewCollection)
	}
}

func normalizeNewCollection(c *models.NewCollection) {
	c.Symbol = normalizeSymbol(c.Symbol)

	seen := make(map[string]bool, len(c.Categories))
	categories := make([]string, 0, MaxCategories)
	for _, category := range c.Categories {
		category = strings.TrimSpace(category)
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
		if len(categories) == MaxCategories {
			break
		}
	}
	c.Categories = categories
}

func normalizeSymbol(symbol string) string {
	symbol = cases.Upper(language.Und).String(strings.TrimSpace(symbol))
	if utf8.RuneCountInString(symbol) > MaxSymbolLength {
		symbol = string([]rune(symbol)[:MaxSymbolLength])
	}
	return symbol
}

func clampRoyalty(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxRoyaltyPercentage {
		return MaxRoyaltyPercentage
	}
	return v
}

// cloneForm deep copies the form so snapshots never alias session state.
// Staged file pointers are shared; their contents are never mutated.
func cloneForm(f models.NFTFormData) models.NFTFormData {
	out := f
	out.AssetFiles = append([]*models.StagedFile{}, f.AssetFiles...)
	out.AssetPreviews = append([]models.AssetPreview{}, f.AssetPreviews...)
	out.Attributes = append([]models.NFTAttribute{}, f.Attributes...)
	out.RoyaltySplits = append([]models.RoyaltySplit{}, f.RoyaltySplits...)
	out.NewCollection = cloneNewCollection(f.NewCollection)
	out.AuctionDetails = cloneAuctionDetails(f.AuctionDetails)
	out.Price = copyPtr(f.Price)
	out.MinimumOffer = copyPtr(f.MinimumOffer)
	out.StartDate = copyPtr(f.StartDate)
	out.EndDate = copyPtr(f.EndDate)
	return out
}

func cloneNewCollection(c *models.NewCollection) *models.NewCollection {
	if c == nil {
		return nil
	}
	out := *c
	out.Categories = append([]string{}, c.Categories...)
	return &out
}

func cloneAuctionDetails(d *models.AuctionDetails) *models.AuctionDetails {
	if d == nil {
		return nil
	}
	out := *d
	if d.ReservePrice != nil {
		out.ReservePrice = float64Ptr(*d.ReservePrice)
	}
	return &out
}

func float64Ptr(v float64) *float64 {
	return &v
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func validCollectionType(t models.CollectionType) bool {
	return t == models.CollectionTypeExisting || t == models.CollectionTypeNew
}

func validSaleType(t models.SaleType) bool {
	switch t {
	case models.SaleTypeFixed, models.SaleTypeAuction, models.SaleTypeOffers:
		return true
	}
	return false
}

func validBlockchain(b models.Blockchain) bool {
	switch b {
	case models.BlockchainEthereum, models.BlockchainPolygon, models.BlockchainSolana:
		return true
	}
	return false
}

func validDisplayType(t models.DisplayType) bool {
	switch t {
	case models.DisplayTypeString, models.DisplayTypeNumber, models.DisplayTypeDate, models.DisplayTypeBoostPercentage:
		return true
	}
	return false
}

func validCategory(category string) bool {
	for _, c := range CollectionCategories {
		if c == category {
			return true
		}
	}
	return false
}

func validDuration(days int) bool {
	for _, d := range AuctionDurations {
		if d == days {
			return true
		}
	}
	return false
}
