package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satonic/satonic-storefront/internal/models"
)

// ErrInvalidAuction is returned when auction terms cannot be scheduled
var ErrInvalidAuction = errors.New("invalid auction")

// AuctionReader looks up stored auctions
type AuctionReader interface {
	GetByNFTID(ctx context.Context, nftID string) (*models.Auction, error)
}

// AuctionService plans the auction of a newly created item
type AuctionService struct {
	auctionRepo AuctionReader
	now         func() time.Time
}

// NewAuctionService creates a new AuctionService. auctionRepo may be nil
// when items are not persisted.
func NewAuctionService(auctionRepo AuctionReader) *AuctionService {
	return &AuctionService{
		auctionRepo: auctionRepo,
		now:         time.Now,
	}
}

// Plan builds the auction for a form with an auction sale. It returns nil
// for any other sale type.
func (s *AuctionService) Plan(form models.NFTFormData) (*models.Auction, error) {
	if form.SaleType != models.SaleTypeAuction {
		return nil, nil
	}
	details := form.AuctionDetails
	if details == nil {
		return nil, fmt.Errorf("%w: missing auction details", ErrInvalidAuction)
	}
	if details.StartingPrice <= 0 {
		return nil, fmt.Errorf("%w: starting price must be positive", ErrInvalidAuction)
	}
	if details.ReservePrice != nil && *details.ReservePrice < details.StartingPrice {
		return nil, fmt.Errorf("%w: reserve price is below the starting price", ErrInvalidAuction)
	}
	if details.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidAuction)
	}

	now := s.now().UTC()
	start := now
	// A scheduled listing starts the auction at the listing start date
	if form.ScheduledListing && form.StartDate != nil && form.StartDate.After(now) {
		start = form.StartDate.UTC()
	}

	auction := &models.Auction{
		StartPrice:   details.StartingPrice,
		Currency:     form.Currency,
		DurationDays: details.Duration,
		StartTime:    start,
		EndTime:      start.AddDate(0, 0, details.Duration),
	}
	if details.ReservePrice != nil {
		reserve := *details.ReservePrice
		auction.ReservePrice = &reserve
	}

	if start.After(now) {
		auction.Status = models.AuctionStatusDraft
	} else {
		auction.Status = models.AuctionStatusActive
	}
	return auction, nil
}

// GetByNFTID retrieves the stored auction of an item
func (s *AuctionService) GetByNFTID(ctx context.Context, nftID string) (*models.Auction, error) {
	if s.auctionRepo == nil {
		return nil, nil
	}
	return s.auctionRepo.GetByNFTID(ctx, nftID)
}
