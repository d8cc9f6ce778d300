package creation

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/satonic/satonic-storefront/internal/models"
)

func TestDefaultFormData(t *testing.T) {
	form := DefaultFormData()
	if form.CollectionType != models.CollectionTypeExisting {
		t.Fatalf("collectionType = %q, want existing", form.CollectionType)
	}
	if form.SaleType != models.SaleTypeFixed || form.Currency != "ETH" {
		t.Fatalf("sale defaults = %q %q", form.SaleType, form.Currency)
	}
	if form.RoyaltyPercentage != 10 || form.Supply != 1 || form.Blockchain != models.BlockchainEthereum {
		t.Fatalf("unexpected defaults: %+v", form)
	}
	if form.AssetFiles == nil || form.AssetPreviews == nil || form.Attributes == nil || form.RoyaltySplits == nil {
		t.Fatalf("collections must be empty, not nil")
	}
}

func TestApplyPatchLeavesOtherFields(t *testing.T) {
	form := DefaultFormData()
	if err := applyPatch(&form, models.FormPatch{Name: strPtr("First")}); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if err := applyPatch(&form, models.FormPatch{Description: strPtr("Second")}); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if form.Name != "First" || form.Description != "Second" {
		t.Fatalf("sibling update lost: name=%q description=%q", form.Name, form.Description)
	}
}

func TestApplyPatchClamps(t *testing.T) {
	form := DefaultFormData()
	royalty, supply := 40.0, 0
	if err := applyPatch(&form, models.FormPatch{RoyaltyPercentage: &royalty, Supply: &supply}); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if form.RoyaltyPercentage != MaxRoyaltyPercentage {
		t.Fatalf("royalty = %v, want %v", form.RoyaltyPercentage, MaxRoyaltyPercentage)
	}
	if form.Supply != 1 {
		t.Fatalf("supply = %d, want 1", form.Supply)
	}

	royalty = -3
	if err := applyPatch(&form, models.FormPatch{RoyaltyPercentage: &royalty}); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if form.RoyaltyPercentage != 0 {
		t.Fatalf("royalty = %v, want 0", form.RoyaltyPercentage)
	}
}

func TestSwitchingToNewCollectionKeepsEnteredData(t *testing.T) {
	form := DefaultFormData()
	newType, existing := models.CollectionTypeNew, models.CollectionTypeExisting

	if err := applyPatch(&form, models.FormPatch{CollectionType: &newType}); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if form.NewCollection == nil {
		t.Fatalf("new collection not initialised")
	}
	err := applyPatch(&form, models.FormPatch{NewCollection: &models.NewCollection{
		Name:       "Foo",
		Symbol:     "  foo-collection-long ",
		Categories: []string{"Art", " Art", "Music", "Sports", "Utility"},
	}})
	if err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if form.NewCollection.Symbol != "FOO-COLLEC" {
		t.Fatalf("symbol = %q, want FOO-COLLEC", form.NewCollection.Symbol)
	}
	want := []string{"Art", "Music", "Sports"}
	if len(form.NewCollection.Categories) != len(want) {
		t.Fatalf("categories = %v, want %v", form.NewCollection.Categories, want)
	}
	for i := range want {
		if form.NewCollection.Categories[i] != want[i] {
			t.Fatalf("categories = %v, want %v", form.NewCollection.Categories, want)
		}
	}

	_ = applyPatch(&form, models.FormPatch{CollectionType: &existing})
	_ = applyPatch(&form, models.FormPatch{CollectionType: &newType})
	if form.NewCollection.Name != "Foo" {
		t.Fatalf("switching back reset the new collection: %+v", form.NewCollection)
	}
}

func TestSwitchingToAuctionInitialisesDetailsOnce(t *testing.T) {
	form := DefaultFormData()
	auction, fixed := models.SaleTypeAuction, models.SaleTypeFixed

	if err := applyPatch(&form, models.FormPatch{SaleType: &auction}); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if form.AuctionDetails == nil || form.AuctionDetails.StartingPrice != 0.1 || form.AuctionDetails.Duration != 7 {
		t.Fatalf("auction defaults = %+v", form.AuctionDetails)
	}

	err := applyPatch(&form, models.FormPatch{AuctionDetails: &models.AuctionDetails{StartingPrice: 2, Duration: 14}})
	if err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	_ = applyPatch(&form, models.FormPatch{SaleType: &fixed})
	_ = applyPatch(&form, models.FormPatch{SaleType: &auction})
	if form.AuctionDetails.StartingPrice != 2 || form.AuctionDetails.Duration != 14 {
		t.Fatalf("auction details overwritten: %+v", form.AuctionDetails)
	}
}

func TestAuctionDetailsReplacedWholesale(t *testing.T) {
	form := DefaultFormData()
	reserve := 3.0
	_ = applyPatch(&form, models.FormPatch{AuctionDetails: &models.AuctionDetails{StartingPrice: 1, ReservePrice: &reserve, Duration: 3}})
	_ = applyPatch(&form, models.FormPatch{AuctionDetails: &models.AuctionDetails{StartingPrice: 2, Duration: 3}})
	if form.AuctionDetails.ReservePrice != nil {
		t.Fatalf("reserve price survived a wholesale replacement")
	}
}

func TestApplyPatchRejectsInvalidValues(t *testing.T) {
	badSale := models.SaleType("barter")
	badChain := models.Blockchain("bitcoin")
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	badDisplay := []models.NFTAttribute{{TraitType: "x", DisplayType: "color"}}

	tests := []struct {
		name  string
		patch models.FormPatch
	}{
		{"negative price", models.FormPatch{Name: strPtr("kept out"), Price: models.Some(-1.0)}},
		{"sale type", models.FormPatch{SaleType: &badSale}},
		{"blockchain", models.FormPatch{Blockchain: &badChain}},
		{"duration", models.FormPatch{AuctionDetails: &models.AuctionDetails{StartingPrice: 1, Duration: 5}}},
		{"dates", models.FormPatch{StartDate: models.Some(start), EndDate: models.Some(end)}},
		{"negative minimum offer", models.FormPatch{MinimumOffer: models.Some(-0.1)}},
		{"display type", models.FormPatch{Attributes: &badDisplay}},
		{"category", models.FormPatch{NewCollection: &models.NewCollection{Categories: []string{"Memes"}}}},
		{"currency", models.FormPatch{Currency: strPtr(" ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := DefaultFormData()
			err := applyPatch(&form, tt.patch)
			if !errors.Is(err, ErrInvalidField) {
				t.Fatalf("err = %v, want ErrInvalidField", err)
			}
			if form.Name != "" {
				t.Fatalf("rejected patch mutated the form")
			}
		})
	}
}

func TestApplyPatchClearsOptionalFields(t *testing.T) {
	start := time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)

	form := DefaultFormData()
	err := applyPatch(&form, models.FormPatch{
		Price:            models.Some(1.5),
		MinimumOffer:     models.Some(0.2),
		ScheduledListing: boolPtr(true),
		StartDate:        models.Some(start),
		EndDate:          models.Some(end),
	})
	if err != nil {
		t.Fatalf("applyPatch: %v", err)
	}

	tests := []struct {
		name    string
		patch   models.FormPatch
		cleared func(models.NFTFormData) bool
	}{
		{"price", models.FormPatch{Price: models.Null[float64]()}, func(f models.NFTFormData) bool { return f.Price == nil }},
		{"minimum offer", models.FormPatch{MinimumOffer: models.Null[float64]()}, func(f models.NFTFormData) bool { return f.MinimumOffer == nil }},
		{"start date", models.FormPatch{StartDate: models.Null[time.Time]()}, func(f models.NFTFormData) bool { return f.StartDate == nil }},
		{"end date", models.FormPatch{EndDate: models.Null[time.Time]()}, func(f models.NFTFormData) bool { return f.EndDate == nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := cloneForm(form)
			if err := applyPatch(&next, tt.patch); err != nil {
				t.Fatalf("applyPatch: %v", err)
			}
			if !tt.cleared(next) {
				t.Fatalf("field was not cleared: %+v", next)
			}
		})
	}
}

func TestApplyPatchReschedulesAfterClearingDates(t *testing.T) {
	form := DefaultFormData()
	first := time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC)
	if err := applyPatch(&form, models.FormPatch{
		ScheduledListing: boolPtr(true),
		StartDate:        models.Some(first),
		EndDate:          models.Some(first.AddDate(0, 0, 5)),
	}); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if err := applyPatch(&form, models.FormPatch{
		ScheduledListing: boolPtr(false),
		StartDate:        models.Null[time.Time](),
		EndDate:          models.Null[time.Time](),
	}); err != nil {
		t.Fatalf("clear dates: %v", err)
	}

	// an end date before the old start is fine once the old dates are gone
	if err := applyPatch(&form, models.FormPatch{
		ScheduledListing: boolPtr(true),
		EndDate:          models.Some(first.AddDate(0, 0, -2)),
	}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if form.StartDate != nil || form.EndDate == nil {
		t.Fatalf("dates = %v %v", form.StartDate, form.EndDate)
	}
}

func TestFormPatchDecodesNullAsClear(t *testing.T) {
	var p models.FormPatch
	if err := json.Unmarshal([]byte(`{"price":null,"minimumOffer":0.3,"startDate":"2027-03-10T00:00:00Z"}`), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.Price.Cleared() {
		t.Fatalf("price = %+v, want cleared", p.Price)
	}
	if p.MinimumOffer.Value == nil || *p.MinimumOffer.Value != 0.3 {
		t.Fatalf("minimumOffer = %+v", p.MinimumOffer)
	}
	if p.EndDate.Set {
		t.Fatalf("absent endDate should not be set")
	}
	if p.StartDate.Value == nil || p.StartDate.Value.Day() != 10 {
		t.Fatalf("startDate = %+v", p.StartDate)
	}

	raw, err := json.Marshal(models.FormPatch{Price: models.Null[float64]()})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(raw) != `{"price":null}` {
		t.Fatalf("encoded = %s", raw)
	}
}

func TestNewCollectionReplacementKeepsStagedImages(t *testing.T) {
	logo := imageFile("logo.png")
	form := DefaultFormData()
	form.CollectionType = models.CollectionTypeNew
	form.NewCollection = &models.NewCollection{Name: "Old", LogoFile: logo, LogoPreview: "preview://logo"}

	err := applyPatch(&form, models.FormPatch{NewCollection: &models.NewCollection{
		Name:        "New",
		LogoPreview: "preview://forged",
	}})
	if err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	if form.NewCollection.LogoFile != logo || form.NewCollection.LogoPreview != "preview://logo" {
		t.Fatalf("staged logo lost: %+v", form.NewCollection)
	}
	if form.NewCollection.Name != "New" {
		t.Fatalf("name = %q, want New", form.NewCollection.Name)
	}
}

func TestCloneFormDoesNotAlias(t *testing.T) {
	price := 1.0
	form := DefaultFormData()
	form.Price = &price
	form.Attributes = append(form.Attributes, models.NFTAttribute{TraitType: "a"})

	clone := cloneForm(form)
	clone.Attributes[0].TraitType = "changed"
	*clone.Price = 9

	if form.Attributes[0].TraitType != "a" || *form.Price != 1 {
		t.Fatalf("clone aliases the original")
	}
}
