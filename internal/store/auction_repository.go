package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/satonic/satonic-storefront/internal/models"
)

const auctionColumns = `id, nft_id, start_price, reserve_price, currency, duration_days,
	start_time, end_time, status, created_at, updated_at`

// AuctionRepository handles database operations related to auctions
type AuctionRepository struct {
	db *Database
}

// NewAuctionRepository creates a new AuctionRepository
func NewAuctionRepository(db *Database) *AuctionRepository {
	return &AuctionRepository{
		db: db,
	}
}

// GetByID retrieves an auction by ID
func (r *AuctionRepository) GetByID(ctx context.Context, id string) (*models.Auction, error) {
	auction := &models.Auction{}
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, auction, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return auction, nil
}

// GetByNFTID retrieves the auction of an item, if any
func (r *AuctionRepository) GetByNFTID(ctx context.Context, nftID string) (*models.Auction, error) {
	auction := &models.Auction{}
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE nft_id = $1 ORDER BY created_at DESC LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, auction, query, nftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return auction, nil
}

// insertAuction writes a new auction inside an item transaction
func insertAuction(ctx context.Context, tx *sqlx.Tx, auction *models.Auction, now time.Time) error {
	if auction.ID == "" {
		auction.ID = uuid.New().String()
	}
	auction.CreatedAt = now
	auction.UpdatedAt = now

	// Set initial status
	if auction.Status == "" {
		if now.Before(auction.StartTime) {
			auction.Status = models.AuctionStatusDraft
		} else {
			auction.Status = models.AuctionStatusActive
		}
	}

	query := `INSERT INTO auctions (id, nft_id, start_price, reserve_price, currency, duration_days,
			 start_time, end_time, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.ExecContext(ctx, query,
		auction.ID, auction.NFTID, auction.StartPrice, auction.ReservePrice, auction.Currency,
		auction.DurationDays, auction.StartTime, auction.EndTime, auction.Status,
		auction.CreatedAt, auction.UpdatedAt)
	return err
}
