package models

import (
	"encoding/json"
	"time"
)

// NFT represents an item created through the creation workflow
type NFT struct {
	ID                string          `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Description       string          `json:"description" db:"description"`
	ExternalLink      string          `json:"external_link" db:"external_link"`
	CollectionID      string          `json:"collection_id" db:"collection_id"`
	Blockchain        Blockchain      `json:"blockchain" db:"blockchain"`
	SaleType          SaleType        `json:"sale_type" db:"sale_type"`
	Price             *float64        `json:"price,omitempty" db:"price"`
	MinimumOffer      *float64        `json:"minimum_offer,omitempty" db:"minimum_offer"`
	Currency          string          `json:"currency" db:"currency"`
	RoyaltyPercentage float64         `json:"royalty_percentage" db:"royalty_percentage"`
	Supply            int             `json:"supply" db:"supply"`
	LazyMint          bool            `json:"lazy_mint" db:"lazy_mint"`
	FreezeMetadata    bool            `json:"freeze_metadata" db:"freeze_metadata"`
	ImageURL          string          `json:"image_url" db:"image_url"`
	ContentURLs       json.RawMessage `json:"content_urls" db:"content_urls"`
	Metadata          json.RawMessage `json:"metadata" db:"metadata"`
	ListedAt          time.Time       `json:"listed_at" db:"listed_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
	AuctionID         *string         `json:"auction_id,omitempty" db:"auction_id"`
}

// NFTMetadata is the token metadata document stored with an item
type NFTMetadata struct {
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	ExternalURL       string         `json:"external_url,omitempty"`
	AlternativeText   string         `json:"alternative_text,omitempty"`
	Attributes        []NFTAttribute `json:"attributes"`
	HasUnlockable     bool           `json:"has_unlockable_content"`
	UnlockableContent string         `json:"unlockable_content,omitempty"`
	RoyaltySplits     []RoyaltySplit `json:"royalty_splits,omitempty"`
	ScheduledStart    *time.Time     `json:"scheduled_start,omitempty"`
	ScheduledEnd      *time.Time     `json:"scheduled_end,omitempty"`
}
