// Package catalog is the in-memory listing service of the storefront. It
// starts from seed data and receives items published by the creation flow.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/satonic/satonic-storefront/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

// PageSize is the number of listings per page
const PageSize = 6

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateListing = errors.New("listing already exists")
)

// Sort orders
const (
	SortRecentlyListed = "recently-listed"
	SortPriceHighLow   = "price-high-low"
	SortPriceLowHigh   = "price-low-high"
	SortMostLiked      = "most-liked"
	SortMostViewed     = "most-viewed"
	SortEndingSoon     = "ending-soon"
)

// SortOptions lists the supported orders for display
var SortOptions = []models.FacetOption{
	{ID: SortRecentlyListed, Name: "Recently Listed"},
	{ID: SortPriceHighLow, Name: "Price: High to Low"},
	{ID: SortPriceLowHigh, Name: "Price: Low to High"},
	{ID: SortMostLiked, Name: "Most Liked"},
	{ID: SortMostViewed, Name: "Most Viewed"},
	{ID: SortEndingSoon, Name: "Ending Soon"},
}

// Seed is the on-disk catalog format
type Seed struct {
	Creators    []models.Creator    `yaml:"creators"`
	Collections []models.Collection `yaml:"collections"`
	Listings    []models.Listing    `yaml:"listings"`
}

// Catalog holds creators, collections and listings
type Catalog struct {
	mu          sync.RWMutex
	creators    map[string]models.Creator
	collections []models.Collection
	listings    []models.Listing
}

// LoadDefault builds the catalog from the embedded seed
func LoadDefault() (*Catalog, error) {
	return Load(defaultSeed)
}

// LoadFile builds the catalog from a YAML seed file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return Load(data)
}

// Load builds the catalog from YAML seed data
func Load(data []byte) (*Catalog, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return New(seed)
}

// New builds the catalog from seed, checking every reference
func New(seed Seed) (*Catalog, error) {
	c := &Catalog{creators: make(map[string]models.Creator, len(seed.Creators))}
	for _, creator := range seed.Creators {
		c.creators[creator.ID] = creator
	}
	seen := make(map[string]bool, len(seed.Collections))
	for _, collection := range seed.Collections {
		if seen[collection.ID] {
			return nil, fmt.Errorf("duplicate collection %s", collection.ID)
		}
		seen[collection.ID] = true
		c.collections = append(c.collections, collection)
	}
	for _, listing := range seed.Listings {
		if err := c.addListing(listing); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) addListing(listing models.Listing) error {
	if _, ok := c.creators[listing.CreatorID]; !ok {
		return fmt.Errorf("listing %s: unknown creator %s", listing.ID, listing.CreatorID)
	}
	if c.collectionIndex(listing.CollectionID) < 0 {
		return fmt.Errorf("listing %s: unknown collection %s", listing.ID, listing.CollectionID)
	}
	for _, l := range c.listings {
		if l.ID == listing.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateListing, listing.ID)
		}
	}
	if listing.PreviewImage == "" {
		listing.PreviewImage = listing.Image
	}
	if listing.Attributes == nil {
		listing.Attributes = []models.Trait{}
	}
	if listing.History == nil {
		listing.History = []models.HistoryEvent{}
	}
	c.listings = append(c.listings, listing)
	return nil
}

func (c *Catalog) collectionIndex(id string) int {
	for i, collection := range c.collections {
		if collection.ID == id {
			return i
		}
	}
	return -1
}

// resolve returns a copy of l with creator and collection attached
func (c *Catalog) resolve(l models.Listing) models.Listing {
	if creator, ok := c.creators[l.CreatorID]; ok {
		l.Creator = &creator
	}
	if i := c.collectionIndex(l.CollectionID); i >= 0 {
		collection := c.collections[i]
		l.Collection = &collection
	}
	return l
}

// FetchListings filters, sorts and paginates listings. Pages start at 1;
// an unknown sort falls back to recently listed.
func (c *Catalog) FetchListings(filters models.ListingFilters, sortBy string, page int) models.ListingPage {
	c.mu.RLock()
	matched := make([]models.Listing, 0, len(c.listings))
	for _, l := range c.listings {
		if matches(l, filters) {
			matched = append(matched, c.resolve(l))
		}
	}
	c.mu.RUnlock()

	sortListings(matched, sortBy)

	if page < 1 {
		page = 1
	}
	total := len(matched)
	start := (page - 1) * PageSize
	if start > total {
		start = total
	}
	end := start + PageSize
	if end > total {
		end = total
	}

	return models.ListingPage{
		Items:      matched[start:end],
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / PageSize)),
		Total:      total,
	}
}

func matches(l models.Listing, f models.ListingFilters) bool {
	if len(f.Collections) > 0 && !contains(f.Collections, l.CollectionID) {
		return false
	}
	if len(f.Blockchains) > 0 && !containsFold(f.Blockchains, l.Blockchain) {
		return false
	}

	buyNow, onAuction := contains(f.Status, "buy-now"), contains(f.Status, "on-auction")
	if buyNow && !onAuction && l.Auction {
		return false
	}
	if onAuction && !buyNow && !l.Auction {
		return false
	}

	if bucket := firstPriceBucket(f.Price); bucket != nil && !bucket.match(l.Price) {
		return false
	}
	return true
}

type priceBucket struct {
	id    string
	name  string
	match func(price float64) bool
}

// priceBuckets are checked in this order; the first selected one applies
var priceBuckets = []priceBucket{
	{"under-0.5", "Under 0.5 ETH", func(p float64) bool { return p < 0.5 }},
	{"0.5-1", "0.5 - 1 ETH", func(p float64) bool { return p >= 0.5 && p <= 1 }},
	{"1-2", "1 - 2 ETH", func(p float64) bool { return p > 1 && p <= 2 }},
	{"above-2", "Above 2 ETH", func(p float64) bool { return p > 2 }},
}

func firstPriceBucket(selected []string) *priceBucket {
	for i := range priceBuckets {
		if contains(selected, priceBuckets[i].id) {
			return &priceBuckets[i]
		}
	}
	return nil
}

func sortListings(items []models.Listing, sortBy string) {
	var less func(a, b models.Listing) bool
	switch sortBy {
	case SortPriceHighLow:
		less = func(a, b models.Listing) bool { return a.Price > b.Price }
	case SortPriceLowHigh:
		less = func(a, b models.Listing) bool { return a.Price < b.Price }
	case SortMostLiked:
		less = func(a, b models.Listing) bool { return a.Likes > b.Likes }
	case SortMostViewed:
		less = func(a, b models.Listing) bool { return a.Views > b.Views }
	case SortEndingSoon:
		// Running auctions first, soonest end first; the rest keep their order.
		less = func(a, b models.Listing) bool {
			aEnds, bEnds := a.Auction && a.EndTime != nil, b.Auction && b.EndTime != nil
			switch {
			case aEnds && bEnds:
				return a.EndTime.Before(*b.EndTime)
			case aEnds:
				return true
			default:
				return false
			}
		}
	default:
		less = func(a, b models.Listing) bool { return a.Listed.After(b.Listed) }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// FetchCollections returns every collection with its item count and the
// creator of its first item
func (c *Catalog) FetchCollections() []models.CollectionSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.CollectionSummary, 0, len(c.collections))
	for _, collection := range c.collections {
		summary := models.CollectionSummary{Collection: collection}
		for _, l := range c.listings {
			if l.CollectionID != collection.ID {
				continue
			}
			if summary.ItemCount == 0 {
				if creator, ok := c.creators[l.CreatorID]; ok {
					summary.Creator = &creator
				}
			}
			summary.ItemCount++
		}
		out = append(out, summary)
	}
	return out
}

// FetchItemDetails returns one listing
func (c *Catalog) FetchItemDetails(id string) (models.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.listings {
		if l.ID == id {
			return c.resolve(l), nil
		}
	}
	return models.Listing{}, fmt.Errorf("listing %s: %w", id, ErrNotFound)
}

// HasListing reports whether a listing id exists
func (c *Catalog) HasListing(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.listings {
		if l.ID == id {
			return true
		}
	}
	return false
}

// HasCollection reports whether a collection id exists
func (c *Catalog) HasCollection(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collectionIndex(id) >= 0
}

// AddCollection registers a collection created alongside an item
func (c *Catalog) AddCollection(collection models.Collection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.collectionIndex(collection.ID) >= 0 {
		return fmt.Errorf("collection %s already exists", collection.ID)
	}
	c.collections = append(c.collections, collection)
	return nil
}

// Publish adds a newly created item. The creator is registered when it is
// not known yet.
func (c *Catalog) Publish(listing models.Listing, creator models.Creator) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.creators[creator.ID]; !ok {
		c.creators[creator.ID] = creator
	}
	listing.CreatorID = creator.ID
	if listing.Listed.IsZero() {
		listing.Listed = time.Now().UTC()
	}
	return c.addListing(listing)
}

// Facets returns the filter options with the number of matching listings
func (c *Catalog) Facets() []models.Facet {
	c.mu.RLock()
	defer c.mu.RUnlock()

	collections := models.Facet{ID: "collection", Name: "Collections"}
	for _, collection := range c.collections {
		collections.Options = append(collections.Options, models.FacetOption{
			ID:    collection.ID,
			Name:  collection.Name,
			Count: c.count(func(l models.Listing) bool { return l.CollectionID == collection.ID }),
		})
	}

	price := models.Facet{ID: "price", Name: "Price Range"}
	for _, bucket := range priceBuckets {
		price.Options = append(price.Options, models.FacetOption{
			ID:    bucket.id,
			Name:  bucket.name,
			Count: c.count(func(l models.Listing) bool { return bucket.match(l.Price) }),
		})
	}

	chains := models.Facet{ID: "blockchain", Name: "Blockchain"}
	for _, chain := range []struct{ id, name string }{
		{"ethereum", "Ethereum"},
		{"polygon", "Polygon"},
		{"solana", "Solana"},
		{"binance", "Binance Smart Chain"},
	} {
		chains.Options = append(chains.Options, models.FacetOption{
			ID:    chain.id,
			Name:  chain.name,
			Count: c.count(func(l models.Listing) bool { return strings.EqualFold(l.Blockchain, chain.id) }),
		})
	}

	status := models.Facet{ID: "status", Name: "Status", Options: []models.FacetOption{
		{ID: "buy-now", Name: "Buy Now", Count: c.count(func(l models.Listing) bool { return !l.Auction })},
		{ID: "on-auction", Name: "On Auction", Count: c.count(func(l models.Listing) bool { return l.Auction })},
	}}

	return []models.Facet{collections, price, chains, status}
}

func (c *Catalog) count(pred func(models.Listing) bool) int {
	n := 0
	for _, l := range c.listings {
		if pred(l) {
			n++
		}
	}
	return n
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
