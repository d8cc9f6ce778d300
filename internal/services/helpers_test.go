package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/satonic/satonic-storefront/internal/catalog"
	"github.com/satonic/satonic-storefront/internal/models"
)

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: make(map[string][]byte)}
}

func (u *memoryUploader) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failOn != "" && key == u.failOn {
		return "", errors.New("upload failed")
	}
	u.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (u *memoryUploader) Remove(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) keys() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	keys := make([]string, 0, len(u.objects))
	for k := range u.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type memoryNFTRepo struct {
	mu       sync.Mutex
	nfts     map[string]*models.NFT
	auctions map[string]*models.Auction
	err      error
}

func newMemoryNFTRepo() *memoryNFTRepo {
	return &memoryNFTRepo{
		nfts:     make(map[string]*models.NFT),
		auctions: make(map[string]*models.Auction),
	}
}

func (r *memoryNFTRepo) Create(_ context.Context, nft *models.NFT, auction *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nfts[nft.ID] = nft
	if auction != nil {
		auction.ID = "auction-" + nft.ID
		auction.NFTID = nft.ID
		nft.AuctionID = &auction.ID
		r.auctions[nft.ID] = auction
	}
	return nil
}

func (r *memoryNFTRepo) GetByID(_ context.Context, id string) (*models.NFT, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nfts[id], nil
}

func (r *memoryNFTRepo) GetByNFTID(_ context.Context, nftID string) (*models.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.auctions[nftID], nil
}

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault returned error: %v", err)
	}
	return c
}

func stagedFile(name, contentType string) *models.StagedFile {
	data := []byte("bytes of " + name)
	return &models.StagedFile{Name: name, ContentType: contentType, Size: int64(len(data)), Data: data}
}

func float64Ptr(v float64) *float64 {
	return &v
}

// submittedForm is a complete fixed price form with one image
func submittedForm() models.NFTFormData {
	file := stagedFile("art.png", "image/png")
	return models.NFTFormData{
		AssetFiles: []*models.StagedFile{file},
		AssetPreviews: []models.AssetPreview{{
			ID: "a1", File: file, FileType: models.FileTypeImage, PreviewURL: "/v1/previews/p1", Name: file.Name, Size: file.Size,
		}},
		Name:                 "Sunrise Study",
		Description:          "Morning light",
		Attributes:           []models.NFTAttribute{{TraitType: "Palette", Value: "Warm", DisplayType: models.DisplayTypeString}},
		CollectionType:       models.CollectionTypeExisting,
		ExistingCollectionID: "collection-123",
		SaleType:             models.SaleTypeFixed,
		Price:                float64Ptr(1.5),
		Currency:             "ETH",
		RoyaltyPercentage:    5,
		Blockchain:           models.BlockchainEthereum,
		Supply:               1,
		RoyaltySplits:        []models.RoyaltySplit{},
	}
}
