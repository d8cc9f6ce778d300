package creation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/satonic/satonic-storefront/internal/models"
)

const (
	// MarketplaceFeePercentage is taken from every sale
	MarketplaceFeePercentage = 2.5

	estimatedMintGas = "0.003"
	gasDeferredLabel = "Deferred until purchase"
)

// fiatRates are rough USD rates per currency. Not a price feed.
var fiatRates = map[string]float64{
	"ETH":   2000,
	"MATIC": 0.5,
}

const fallbackFiatRate = 50

// CalculateRoyaltyBreakdown splits a sale into creator royalty, marketplace
// fee and seller share, all in percent.
func CalculateRoyaltyBreakdown(royaltyPercentage float64) models.RoyaltyBreakdown {
	royalty := clampRoyalty(royaltyPercentage)
	return models.RoyaltyBreakdown{
		CreatorRoyalty: royalty,
		MarketplaceFee: MarketplaceFeePercentage,
		SellerReceives: 100 - royalty - MarketplaceFeePercentage,
	}
}

// EstimateFiatValue converts price into USD using the mock rate table
func EstimateFiatValue(price float64, currency string) float64 {
	rate, ok := fiatRates[strings.ToUpper(strings.TrimSpace(currency))]
	if !ok {
		rate = fallbackFiatRate
	}
	return price * rate
}

// NativeToken returns the gas token symbol of a chain
func NativeToken(chain models.Blockchain) string {
	switch chain {
	case models.BlockchainEthereum:
		return "ETH"
	case models.BlockchainPolygon:
		return "MATIC"
	default:
		return "SOL"
	}
}

// ChainLabel returns the display name of a chain
func ChainLabel(chain models.Blockchain) string {
	return cases.Title(language.English).String(string(chain))
}

// CalculateFeeSummary builds the cost overview shown before submitting.
// Amounts are only set for fixed price sales with a positive price.
func CalculateFeeSummary(form *models.NFTFormData) models.FeeSummary {
	summary := models.FeeSummary{
		Breakdown:   CalculateRoyaltyBreakdown(form.RoyaltyPercentage),
		Currency:    form.Currency,
		GasDeferred: form.LazyMint,
		ChainLabel:  ChainLabel(form.Blockchain),
	}

	if form.LazyMint {
		summary.EstimatedGas = gasDeferredLabel
	} else {
		summary.EstimatedGas = "~" + estimatedMintGas + " " + NativeToken(form.Blockchain)
	}

	if form.SaleType == models.SaleTypeFixed && form.Price != nil && *form.Price > 0 {
		price := *form.Price
		summary.MarketplaceFee = float64Ptr(price * MarketplaceFeePercentage / 100)
		summary.SellerProceeds = float64Ptr(price * (100 - MarketplaceFeePercentage) / 100)
		summary.EstimatedFiat = float64Ptr(EstimateFiatValue(price, form.Currency))
	}
	return summary
}
