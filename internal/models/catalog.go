package models

import "time"

// Creator is the author of a listed item
type Creator struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Avatar   string `json:"avatar" yaml:"avatar"`
	Verified bool   `json:"verified" yaml:"verified"`
}

// Collection is a named grouping of listed items
type Collection struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Symbol      string   `json:"symbol,omitempty" yaml:"symbol"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Verified    bool     `json:"verified" yaml:"verified"`
	FloorPrice  float64  `json:"floor_price" yaml:"floor_price"`
	Image       string   `json:"image,omitempty" yaml:"image"`
	BannerImage string   `json:"banner_image,omitempty" yaml:"banner_image"`
	Categories  []string `json:"categories,omitempty" yaml:"categories"`
}

// CollectionSummary is a collection with computed catalog statistics
type CollectionSummary struct {
	Collection
	ItemCount int      `json:"item_count"`
	Creator   *Creator `json:"creator,omitempty"`
}

// Rarity ranks an item within its collection
type Rarity struct {
	Score             float64 `json:"score" yaml:"score"`
	Rank              int     `json:"rank" yaml:"rank"`
	TotalInCollection int     `json:"total_in_collection" yaml:"total_in_collection"`
}

// Trait is a listed item's attribute
type Trait struct {
	TraitType string `json:"trait_type" yaml:"trait_type"`
	Value     string `json:"value" yaml:"value"`
}

// HistoryEvent is one entry of an item's provenance
type HistoryEvent struct {
	Event    string    `json:"event" yaml:"event"`
	From     string    `json:"from" yaml:"from"`
	To       string    `json:"to" yaml:"to"`
	Date     time.Time `json:"date" yaml:"date"`
	Price    float64   `json:"price" yaml:"price"`
	Currency string    `json:"currency" yaml:"currency"`
}

// Listing is an item shown in the storefront
type Listing struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description" yaml:"description"`
	Image        string         `json:"image" yaml:"image"`
	PreviewImage string         `json:"preview_image" yaml:"preview_image"`
	CreatorID    string         `json:"-" yaml:"creator"`
	CollectionID string         `json:"-" yaml:"collection"`
	Creator      *Creator       `json:"creator,omitempty" yaml:"-"`
	Collection   *Collection    `json:"collection,omitempty" yaml:"-"`
	Price        float64        `json:"price" yaml:"price"`
	Currency     string         `json:"currency" yaml:"currency"`
	Likes        int            `json:"likes" yaml:"likes"`
	Views        int            `json:"views" yaml:"views"`
	Listed       time.Time      `json:"listed" yaml:"listed"`
	Auction      bool           `json:"auction" yaml:"auction"`
	EndTime      *time.Time     `json:"end_time,omitempty" yaml:"end_time"`
	Blockchain   string         `json:"blockchain" yaml:"blockchain"`
	Rarity       Rarity         `json:"rarity" yaml:"rarity"`
	Attributes   []Trait        `json:"attributes" yaml:"attributes"`
	History      []HistoryEvent `json:"history" yaml:"history"`
}

// ListingFilters narrows the listing query
type ListingFilters struct {
	Collections []string `json:"collections"`
	Blockchains []string `json:"blockchain"`
	Status      []string `json:"status"`
	Price       []string `json:"price"`
}

// ListingPage is one page of filtered listings
type ListingPage struct {
	Items      []Listing `json:"items"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Total      int       `json:"total"`
}

// FacetOption is a selectable filter value with the number of matches
type FacetOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Facet groups filter options of one kind
type Facet struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Options []FacetOption `json:"options"`
}
