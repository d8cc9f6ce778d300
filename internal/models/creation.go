package models

import (
	"time"
)

// CreationStep identifies one step of the item creation workflow
type CreationStep string

const (
	StepUpload     CreationStep = "upload"
	StepDetails    CreationStep = "details"
	StepCollection CreationStep = "collection"
	StepPricing    CreationStep = "pricing"
	StepReview     CreationStep = "review"
)

// CreationSteps lists the workflow steps in navigation order
var CreationSteps = []CreationStep{StepUpload, StepDetails, StepCollection, StepPricing, StepReview}

// FileType is the display kind derived from an uploaded file
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeAudio FileType = "audio"
	FileTypeModel FileType = "model"
)

// DisplayType controls how a trait value is rendered
type DisplayType string

const (
	DisplayTypeString          DisplayType = "string"
	DisplayTypeNumber          DisplayType = "number"
	DisplayTypeDate            DisplayType = "date"
	DisplayTypeBoostPercentage DisplayType = "boost_percentage"
)

// CollectionType selects between an existing collection and a new one
type CollectionType string

const (
	CollectionTypeExisting CollectionType = "existing"
	CollectionTypeNew      CollectionType = "new"
)

// SaleType is the listing mode of the item
type SaleType string

const (
	SaleTypeFixed   SaleType = "fixed"
	SaleTypeAuction SaleType = "auction"
	SaleTypeOffers  SaleType = "offers"
)

// Blockchain is the chain the item is listed on
type Blockchain string

const (
	BlockchainEthereum Blockchain = "ethereum"
	BlockchainPolygon  Blockchain = "polygon"
	BlockchainSolana   Blockchain = "solana"
)

// StagedFile is a raw uploaded file held in memory. Its bytes are never
// serialized.
type StagedFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// AssetPreview is one staged asset together with its preview handle
type AssetPreview struct {
	ID         string      `json:"id"`
	File       *StagedFile `json:"file"`
	FileType   FileType    `json:"fileType"`
	PreviewURL string      `json:"previewUrl"`
	Name       string      `json:"name"`
	Size       int64       `json:"size"`
}

// NFTAttribute is one trait attached to the item
type NFTAttribute struct {
	TraitType   string      `json:"traitType"`
	Value       string      `json:"value"`
	DisplayType DisplayType `json:"displayType"`
}

// AttributePatch selectively mutates an NFTAttribute
type AttributePatch struct {
	TraitType   *string      `json:"traitType,omitempty"`
	Value       *string      `json:"value,omitempty"`
	DisplayType *DisplayType `json:"displayType,omitempty"`
}

// NewCollection holds the parameters of a collection created alongside the item
type NewCollection struct {
	Name          string      `json:"name"`
	Symbol        string      `json:"symbol"`
	Description   string      `json:"description"`
	LogoFile      *StagedFile `json:"logoFile,omitempty"`
	LogoPreview   string      `json:"logoPreview,omitempty"`
	BannerFile    *StagedFile `json:"bannerFile,omitempty"`
	BannerPreview string      `json:"bannerPreview,omitempty"`
	Categories    []string    `json:"categories"`
}

// AuctionDetails describes a timed auction sale
type AuctionDetails struct {
	StartingPrice float64  `json:"startingPrice"`
	ReservePrice  *float64 `json:"reservePrice,omitempty"`
	Duration      int      `json:"duration"` // in days
}

// RoyaltySplit assigns a share of the creator royalty to an address
type RoyaltySplit struct {
	Address    string  `json:"address"`
	Percentage float64 `json:"percentage"`
}

// NFTFormData is the full state of the item creation form
type NFTFormData struct {
	AssetFiles    []*StagedFile  `json:"assetFiles"`
	AssetPreviews []AssetPreview `json:"assetPreviews"`

	Name            string `json:"name"`
	Description     string `json:"description"`
	ExternalLink    string `json:"externalLink,omitempty"`
	AlternativeText string `json:"alternativeText,omitempty"`

	Attributes []NFTAttribute `json:"attributes"`

	HasUnlockableContent bool   `json:"hasUnlockableContent"`
	UnlockableContent    string `json:"unlockableContent,omitempty"`

	CollectionType       CollectionType `json:"collectionType"`
	ExistingCollectionID string         `json:"existingCollectionId,omitempty"`
	NewCollection        *NewCollection `json:"newCollection,omitempty"`

	SaleType       SaleType        `json:"saleType"`
	Price          *float64        `json:"price,omitempty"`
	Currency       string          `json:"currency"`
	AuctionDetails *AuctionDetails `json:"auctionDetails,omitempty"`
	MinimumOffer   *float64        `json:"minimumOffer,omitempty"`

	ScheduledListing bool       `json:"scheduledListing"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`

	RoyaltyPercentage float64        `json:"royaltyPercentage"`
	SplitRoyalties    bool           `json:"splitRoyalties"`
	RoyaltySplits     []RoyaltySplit `json:"royaltySplits"`

	Blockchain     Blockchain `json:"blockchain"`
	LazyMint       bool       `json:"lazyMint"`
	FreezeMetadata bool       `json:"freezeMetadata"`
	Supply         int        `json:"supply"`
}

// FormPatch is a partial update of NFTFormData. A nil field is left
// untouched; nested objects and slices replace the current value wholesale.
// Optional fields are also cleared by an explicit null.
type FormPatch struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	ExternalLink    *string `json:"externalLink,omitempty"`
	AlternativeText *string `json:"alternativeText,omitempty"`

	Attributes *[]NFTAttribute `json:"attributes,omitempty"`

	HasUnlockableContent *bool   `json:"hasUnlockableContent,omitempty"`
	UnlockableContent    *string `json:"unlockableContent,omitempty"`

	CollectionType       *CollectionType `json:"collectionType,omitempty"`
	ExistingCollectionID *string         `json:"existingCollectionId,omitempty"`
	NewCollection        *NewCollection  `json:"newCollection,omitempty"`

	SaleType       *SaleType       `json:"saleType,omitempty"`
	Price          Optional[float64] `json:"price,omitzero"`
	Currency       *string           `json:"currency,omitempty"`
	AuctionDetails *AuctionDetails   `json:"auctionDetails,omitempty"`
	MinimumOffer   Optional[float64] `json:"minimumOffer,omitzero"`

	ScheduledListing *bool               `json:"scheduledListing,omitempty"`
	StartDate        Optional[time.Time] `json:"startDate,omitzero"`
	EndDate          Optional[time.Time] `json:"endDate,omitzero"`

	RoyaltyPercentage *float64        `json:"royaltyPercentage,omitempty"`
	SplitRoyalties    *bool           `json:"splitRoyalties,omitempty"`
	RoyaltySplits     *[]RoyaltySplit `json:"royaltySplits,omitempty"`

	Blockchain     *Blockchain `json:"blockchain,omitempty"`
	LazyMint       *bool       `json:"lazyMint,omitempty"`
	FreezeMetadata *bool       `json:"freezeMetadata,omitempty"`
	Supply         *int        `json:"supply,omitempty"`
}

// CreationState is a read-only snapshot of a creation session
type CreationState struct {
	SessionID    string                `json:"session_id"`
	Form         NFTFormData           `json:"form"`
	Step         CreationStep          `json:"step"`
	Completion   map[CreationStep]bool `json:"completion"`
	IsSubmitting bool                  `json:"is_submitting"`
}

// RoyaltyBreakdown splits a sale into percentages
type RoyaltyBreakdown struct {
	CreatorRoyalty float64 `json:"creator_royalty"`
	MarketplaceFee float64 `json:"marketplace_fee"`
	SellerReceives float64 `json:"seller_receives"`
}

// FeeSummary is the estimated cost view shown on review
type FeeSummary struct {
	Breakdown      RoyaltyBreakdown `json:"breakdown"`
	MarketplaceFee *float64         `json:"marketplace_fee_amount,omitempty"`
	SellerProceeds *float64         `json:"seller_proceeds,omitempty"`
	EstimatedGas   string           `json:"estimated_gas"`
	EstimatedFiat  *float64         `json:"estimated_fiat_usd,omitempty"`
	Currency       string           `json:"currency"`
	GasDeferred    bool             `json:"gas_deferred"`
	ChainLabel     string           `json:"chain_label"`
}
