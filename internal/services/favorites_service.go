package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/satonic/satonic-storefront/internal/creation"
)

// ErrUnknownListing is returned for listing ids the catalog does not know
var ErrUnknownListing = errors.New("unknown listing")

const (
	likedKey = "likedNFTs"
	cartKey  = "nftCart"
)

// ListingChecker reports whether a listing exists
type ListingChecker interface {
	HasListing(id string) bool
}

// FavoritesService keeps the liked items and the cart of a session
type FavoritesService struct {
	kv       creation.KeyValueStore
	listings ListingChecker
}

// NewFavoritesService creates a new FavoritesService
func NewFavoritesService(kv creation.KeyValueStore, listings ListingChecker) *FavoritesService {
	return &FavoritesService{kv: kv, listings: listings}
}

// Likes returns the liked listing ids in the order they were liked
func (s *FavoritesService) Likes(ctx context.Context, sessionID string) ([]string, error) {
	return s.list(ctx, sessionID, likedKey)
}

// ToggleLike likes or unlikes a listing and reports whether it is now liked
func (s *FavoritesService) ToggleLike(ctx context.Context, sessionID, listingID string) (bool, error) {
	if err := s.check(listingID); err != nil {
		return false, err
	}
	ids, err := s.list(ctx, sessionID, likedKey)
	if err != nil {
		return false, err
	}

	if i := indexOf(ids, listingID); i >= 0 {
		ids = append(ids[:i], ids[i+1:]...)
		return false, s.store(ctx, sessionID, likedKey, ids)
	}
	return true, s.store(ctx, sessionID, likedKey, append(ids, listingID))
}

// Cart returns the listing ids in the cart
func (s *FavoritesService) Cart(ctx context.Context, sessionID string) ([]string, error) {
	return s.list(ctx, sessionID, cartKey)
}

// AddToCart adds a listing to the cart. Adding it twice is a no-op.
func (s *FavoritesService) AddToCart(ctx context.Context, sessionID, listingID string) ([]string, error) {
	if err := s.check(listingID); err != nil {
		return nil, err
	}
	ids, err := s.list(ctx, sessionID, cartKey)
	if err != nil {
		return nil, err
	}
	if indexOf(ids, listingID) >= 0 {
		return ids, nil
	}
	ids = append(ids, listingID)
	return ids, s.store(ctx, sessionID, cartKey, ids)
}

// RemoveFromCart removes a listing from the cart
func (s *FavoritesService) RemoveFromCart(ctx context.Context, sessionID, listingID string) ([]string, error) {
	ids, err := s.list(ctx, sessionID, cartKey)
	if err != nil {
		return nil, err
	}
	i := indexOf(ids, listingID)
	if i < 0 {
		return ids, nil
	}
	ids = append(ids[:i], ids[i+1:]...)
	return ids, s.store(ctx, sessionID, cartKey, ids)
}

// ClearCart empties the cart
func (s *FavoritesService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.kv.Remove(ctx, favoritesKey(sessionID, cartKey)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *FavoritesService) check(listingID string) error {
	if s.listings != nil && !s.listings.HasListing(listingID) {
		return fmt.Errorf("%w: %s", ErrUnknownListing, listingID)
	}
	return nil
}

func (s *FavoritesService) list(ctx context.Context, sessionID, name string) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, favoritesKey(sessionID, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	ids := []string{}
	if !ok {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return ids, nil
}

func (s *FavoritesService) store(ctx context.Context, sessionID, name string, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, favoritesKey(sessionID, name), string(raw)); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

func favoritesKey(sessionID, name string) string {
	return "favorites:" + sessionID + ":" + name
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
