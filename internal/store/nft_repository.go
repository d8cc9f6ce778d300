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

const nftColumns = `id, name, description, external_link, collection_id, blockchain, sale_type,
	price, minimum_offer, currency, royalty_percentage, supply, lazy_mint, freeze_metadata,
	image_url, content_urls, metadata, listed_at, created_at, updated_at, auction_id`

// NFTRepository handles database operations related to created items
type NFTRepository struct {
	db *Database
}

// NewNFTRepository creates a new NFTRepository
func NewNFTRepository(db *Database) *NFTRepository {
	return &NFTRepository{
		db: db,
	}
}

// GetByID retrieves an item by ID
func (r *NFTRepository) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	nft := &models.NFT{}
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, nft, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return nft, nil
}

// ListByCollection retrieves the newest items of a collection
func (r *NFTRepository) ListByCollection(ctx context.Context, collectionID string, limit int) ([]models.NFT, error) {
	if limit <= 0 {
		limit = 10
	}
	nfts := []models.NFT{}
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE collection_id = $1 ORDER BY created_at DESC LIMIT $2`
	if err := r.db.GetDB().SelectContext(ctx, &nfts, query, collectionID, limit); err != nil {
		return nil, err
	}
	return nfts, nil
}

// Create stores a new item. When auction is not nil it is stored in the
// same transaction and linked to the item.
func (r *NFTRepository) Create(ctx context.Context, nft *models.NFT, auction *models.Auction) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if nft.ID == "" {
			nft.ID = uuid.New().String()
		}
		now := time.Now().UTC()
		nft.CreatedAt = now
		nft.UpdatedAt = now
		if nft.ListedAt.IsZero() {
			nft.ListedAt = now
		}
		if len(nft.ContentURLs) == 0 {
			nft.ContentURLs = []byte("[]")
		}
		if len(nft.Metadata) == 0 {
			nft.Metadata = []byte("{}")
		}

		query := `INSERT INTO nfts (id, name, description, external_link, collection_id, blockchain,
				  sale_type, price, minimum_offer, currency, royalty_percentage, supply, lazy_mint,
				  freeze_metadata, image_url, content_urls, metadata, listed_at, created_at, updated_at)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

		_, err := tx.ExecContext(ctx, query,
			nft.ID, nft.Name, nft.Description, nft.ExternalLink, nft.CollectionID, nft.Blockchain,
			nft.SaleType, nft.Price, nft.MinimumOffer, nft.Currency, nft.RoyaltyPercentage, nft.Supply,
			nft.LazyMint, nft.FreezeMetadata, nft.ImageURL, nft.ContentURLs, nft.Metadata,
			nft.ListedAt, nft.CreatedAt, nft.UpdatedAt)
		if err != nil {
			return err
		}

		if auction == nil {
			return nil
		}

		auction.NFTID = nft.ID
		if err := insertAuction(ctx, tx, auction, now); err != nil {
			return err
		}

		query = `UPDATE nfts SET auction_id = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, query, auction.ID, now, nft.ID); err != nil {
			return err
		}
		nft.AuctionID = &auction.ID
		return nil
	})
}
