package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/satonic/satonic-storefront/internal/catalog"
	"github.com/satonic/satonic-storefront/internal/creation"
	"github.com/satonic/satonic-storefront/internal/models"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrNoAssets          = errors.New("no asset files to upload")
)

// AssetUploader stores submitted files and returns their public URL
type AssetUploader interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// NFTRepository persists created items
type NFTRepository interface {
	Create(ctx context.Context, nft *models.NFT, auction *models.Auction) error
	GetByID(ctx context.Context, id string) (*models.NFT, error)
}

// NFTServiceOptions are the collaborators of an NFTService. Repo and
// Catalog are optional.
type NFTServiceOptions struct {
	Uploader AssetUploader
	Repo     NFTRepository
	Catalog  *catalog.Catalog
	Auctions *AuctionService
	Wallets  *WalletService
	Creator  models.Creator
	// Delay simulates the latency of the minting backend
	Delay  time.Duration
	Logger zerolog.Logger
}

// NFTService creates items from submitted creation forms
type NFTService struct {
	uploader AssetUploader
	nftRepo  NFTRepository
	catalog  *catalog.Catalog
	auctions *AuctionService
	wallets  *WalletService
	creator  models.Creator
	delay    time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// ItemDetails is a stored item together with its auction
type ItemDetails struct {
	NFT     *models.NFT     `json:"nft"`
	Auction *models.Auction `json:"auction,omitempty"`
}

// NewNFTService creates a new NFTService
func NewNFTService(opts NFTServiceOptions) *NFTService {
	s := &NFTService{
		uploader: opts.Uploader,
		nftRepo:  opts.Repo,
		catalog:  opts.Catalog,
		auctions: opts.Auctions,
		wallets:  opts.Wallets,
		creator:  opts.Creator,
		delay:    opts.Delay,
		logger:   opts.Logger.With().Str("component", "nft_service").Logger(),
		now:      time.Now,
	}
	if s.auctions == nil {
		s.auctions = NewAuctionService(nil)
	}
	if s.wallets == nil {
		s.wallets = NewWalletService()
	}
	if s.creator.ID == "" {
		s.creator = models.Creator{ID: "creator-storefront", Name: "Storefront Creator"}
	}
	return s
}

var _ creation.ItemCreator = (*NFTService)(nil)

// CreateItem uploads the staged files of a submitted form, stores the item
// and lists it in the catalog. Uploaded files are removed again when a
// later step fails.
func (s *NFTService) CreateItem(ctx context.Context, form models.NFTFormData) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	if err := s.validate(form); err != nil {
		return "", err
	}

	id := "nft-" + uuid.New().String()
	logger := s.logger.With().Str("item_id", id).Logger()

	var uploaded []string
	cleanup := func() {
		for _, key := range uploaded {
			if err := s.uploader.Remove(context.WithoutCancel(ctx), key); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("failed to remove uploaded asset")
			}
		}
	}
	put := func(key string, file *models.StagedFile) (string, error) {
		url, err := s.uploader.Put(ctx, key, file.Data, file.ContentType)
		if err != nil {
			return "", fmt.Errorf("failed to upload %s: %w", file.Name, err)
		}
		uploaded = append(uploaded, key)
		return url, nil
	}

	var contentURLs []string
	for i, file := range form.AssetFiles {
		if file == nil {
			continue
		}
		url, err := put(assetKey(id, i, file.Name), file)
		if err != nil {
			cleanup()
			return "", err
		}
		contentURLs = append(contentURLs, url)
	}
	if len(contentURLs) == 0 {
		return "", ErrNoAssets
	}

	collection, err := s.resolveCollection(ctx, id, form, put)
	if err != nil {
		cleanup()
		return "", err
	}

	auction, err := s.auctions.Plan(form)
	if err != nil {
		cleanup()
		return "", err
	}

	nft, err := s.buildNFT(id, form, collection.ID, contentURLs)
	if err != nil {
		cleanup()
		return "", err
	}

	if s.nftRepo != nil {
		if err := s.nftRepo.Create(ctx, nft, auction); err != nil {
			cleanup()
			return "", fmt.Errorf("failed to store item: %w", err)
		}
	}

	if s.catalog != nil {
		if form.CollectionType == models.CollectionTypeNew {
			if err := s.catalog.AddCollection(collection); err != nil {
				logger.Warn().Err(err).Msg("failed to register collection")
			}
		}
		if err := s.catalog.Publish(s.buildListing(nft, form, auction), s.creator); err != nil {
			logger.Error().Err(err).Msg("failed to publish item")
		}
	}

	logger.Info().
		Str("collection_id", collection.ID).
		Str("sale_type", string(form.SaleType)).
		Int("assets", len(contentURLs)).
		Msg("item created")
	return id, nil
}

// GetItem retrieves a stored item and its auction. It returns nil when
// the item does not exist or items are not persisted.
func (s *NFTService) GetItem(ctx context.Context, id string) (*ItemDetails, error) {
	if s.nftRepo == nil {
		return nil, nil
	}
	nft, err := s.nftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if nft == nil {
		return nil, nil
	}
	details := &ItemDetails{NFT: nft}
	if nft.AuctionID != nil {
		auction, err := s.auctions.GetByNFTID(ctx, nft.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get auction: %w", err)
		}
		details.Auction = auction
	}
	return details, nil
}

func (s *NFTService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *NFTService) validate(form models.NFTFormData) error {
	if form.SplitRoyalties {
		if err := s.wallets.ValidateRoyaltySplits(form.Blockchain, form.RoyaltySplits); err != nil {
			return err
		}
	}
	if form.CollectionType == models.CollectionTypeExisting && s.catalog != nil &&
		!s.catalog.HasCollection(form.ExistingCollectionID) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, form.ExistingCollectionID)
	}
	return nil
}

type uploadFunc func(key string, file *models.StagedFile) (string, error)

func (s *NFTService) resolveCollection(ctx context.Context, id string, form models.NFTFormData, put uploadFunc) (models.Collection, error) {
	if form.CollectionType != models.CollectionTypeNew {
		return models.Collection{ID: form.ExistingCollectionID}, nil
	}
	nc := form.NewCollection
	if nc == nil {
		return models.Collection{}, fmt.Errorf("%w: new collection is missing", creation.ErrInvalidField)
	}
	if err := ctx.Err(); err != nil {
		return models.Collection{}, err
	}

	collectionID := "collection-" + uuid.New().String()
	collection := models.Collection{
		ID:          collectionID,
		Name:        nc.Name,
		Symbol:      nc.Symbol,
		Description: nc.Description,
		Categories:  append([]string(nil), nc.Categories...),
	}
	if nc.LogoFile != nil {
		url, err := put(path.Join(id, "collection", "logo-"+nc.LogoFile.Name), nc.LogoFile)
		if err != nil {
			return models.Collection{}, err
		}
		collection.Image = url
	}
	if nc.BannerFile != nil {
		url, err := put(path.Join(id, "collection", "banner-"+nc.BannerFile.Name), nc.BannerFile)
		if err != nil {
			return models.Collection{}, err
		}
		collection.BannerImage = url
	}
	return collection, nil
}

func (s *NFTService) buildNFT(id string, form models.NFTFormData, collectionID string, contentURLs []string) (*models.NFT, error) {
	metadata := models.NFTMetadata{
		Name:            form.Name,
		Description:     form.Description,
		ExternalURL:     form.ExternalLink,
		AlternativeText: form.AlternativeText,
		Attributes:      form.Attributes,
		HasUnlockable:   form.HasUnlockableContent,
	}
	if form.HasUnlockableContent {
		metadata.UnlockableContent = form.UnlockableContent
	}
	if form.SplitRoyalties {
		metadata.RoyaltySplits = form.RoyaltySplits
	}
	if form.ScheduledListing {
		metadata.ScheduledStart = form.StartDate
		metadata.ScheduledEnd = form.EndDate
	}
	if metadata.Attributes == nil {
		metadata.Attributes = []models.NFTAttribute{}
	}

	rawMetadata, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	rawURLs, err := json.Marshal(contentURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content urls: %w", err)
	}

	nft := &models.NFT{
		ID:                id,
		Name:              form.Name,
		Description:       form.Description,
		ExternalLink:      form.ExternalLink,
		CollectionID:      collectionID,
		Blockchain:        form.Blockchain,
		SaleType:          form.SaleType,
		Currency:          form.Currency,
		RoyaltyPercentage: form.RoyaltyPercentage,
		Supply:            form.Supply,
		LazyMint:          form.LazyMint,
		FreezeMetadata:    form.FreezeMetadata,
		ImageURL:          contentURLs[0],
		ContentURLs:       rawURLs,
		Metadata:          rawMetadata,
		ListedAt:          s.now().UTC(),
	}
	switch form.SaleType {
	case models.SaleTypeFixed:
		nft.Price = form.Price
	case models.SaleTypeOffers:
		nft.MinimumOffer = form.MinimumOffer
	}
	if form.ScheduledListing && form.StartDate != nil {
		nft.ListedAt = form.StartDate.UTC()
	}
	return nft, nil
}

func (s *NFTService) buildListing(nft *models.NFT, form models.NFTFormData, auction *models.Auction) models.Listing {
	listing := models.Listing{
		ID:           nft.ID,
		Name:         nft.Name,
		Description:  nft.Description,
		Image:        nft.ImageURL,
		CollectionID: nft.CollectionID,
		Currency:     nft.Currency,
		Listed:       nft.ListedAt,
		Blockchain:   creation.ChainLabel(nft.Blockchain),
		History: []models.HistoryEvent{{
			Event:    "Minted",
			From:     "0x0000000000000000000000000000000000000000",
			To:       s.creator.Name,
			Date:     nft.ListedAt,
			Currency: nft.Currency,
		}},
	}

	switch {
	case nft.Price != nil:
		listing.Price = *nft.Price
	case auction != nil:
		listing.Price = auction.StartPrice
		listing.Auction = true
		end := auction.EndTime
		listing.EndTime = &end
	case nft.MinimumOffer != nil:
		listing.Price = *nft.MinimumOffer
	}

	for _, attr := range form.Attributes {
		if strings.TrimSpace(attr.TraitType) == "" {
			continue
		}
		listing.Attributes = append(listing.Attributes, models.Trait{TraitType: attr.TraitType, Value: attr.Value})
	}
	return listing
}

func assetKey(itemID string, index int, name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		name = "asset"
	}
	return path.Join(itemID, fmt.Sprintf("%02d-%s", index, name))
}
