package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-storefront/internal/creation"
	"github.com/satonic/satonic-storefront/internal/models"
	"github.com/satonic/satonic-storefront/internal/services"
)

// multipart overhead allowed on top of the file size cap
const uploadOverhead = 1 << 20

type startResponse struct {
	models.SessionToken
	State models.CreationState `json:"state"`
}

type attributeResponse struct {
	Index int                  `json:"index"`
	State models.CreationState `json:"state"`
}

type assetResponse struct {
	Asset models.AssetPreview  `json:"asset"`
	State models.CreationState `json:"state"`
}

type previewResponse struct {
	PreviewURL string               `json:"preview_url"`
	State      models.CreationState `json:"state"`
}

type draftResponse struct {
	Loaded bool                 `json:"loaded"`
	State  models.CreationState `json:"state"`
}

type stepRequest struct {
	Step string `json:"step"`
}

type submitResponse struct {
	ItemID string `json:"item_id"`
}

type creationOptions struct {
	Steps                []models.CreationStep `json:"steps"`
	AuctionDurations     []int                 `json:"auction_durations"`
	CollectionCategories []string              `json:"collection_categories"`
	MaxRoyaltyPercentage float64               `json:"max_royalty_percentage"`
	MarketplaceFee       float64               `json:"marketplace_fee_percentage"`
	MaxAssetBytes        int64                 `json:"max_asset_bytes"`
	MaxLogoBytes         int64                 `json:"max_logo_bytes"`
	MaxBannerBytes       int64                 `json:"max_banner_bytes"`
}

// StartCreation opens a new creation session
func StartCreation(creations *services.CreationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, token, err := creations.Start()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, startResponse{SessionToken: token, State: session.Snapshot()})
	}
}

// GetCreationOptions returns the fixed choices offered by the form
func GetCreationOptions() http.HandlerFunc {
	options := creationOptions{
		Steps:                models.CreationSteps,
		AuctionDurations:     creation.AuctionDurations,
		CollectionCategories: creation.CollectionCategories,
		MaxRoyaltyPercentage: creation.MaxRoyaltyPercentage,
		MarketplaceFee:       creation.MarketplaceFeePercentage,
		MaxAssetBytes:        creation.MaxAssetBytes,
		MaxLogoBytes:         creation.MaxLogoBytes,
		MaxBannerBytes:       creation.MaxBannerBytes,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, options)
	}
}

// GetCreation returns the state of the current session
func GetCreation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, mustSession(r).Snapshot())
	}
}

// UpdateCreation merges a partial form update
func UpdateCreation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)

		var patch models.FormPatch
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, r, err)
			return
		}
		if err := session.Update(patch); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// AddAsset stages an uploaded file
func AddAsset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)

		file, err := readUpload(w, r, creation.MaxAssetBytes)
		if err != nil {
			writeError(w, r, err)
			return
		}
		asset, err := session.AddAsset(file)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, assetResponse{Asset: asset, State: session.Snapshot()})
	}
}

// RemoveAsset removes a staged file
func RemoveAsset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)
		if !session.RemoveAsset(chi.URLParam(r, "id")) {
			writeError(w, r, fmt.Errorf("asset %s: %w", chi.URLParam(r, "id"), errNotFound))
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// AddAttribute appends an empty attribute
func AddAttribute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)
		index := session.AddAttribute()
		writeJSON(w, http.StatusCreated, attributeResponse{Index: index, State: session.Snapshot()})
	}
}

// UpdateAttribute changes fields of one attribute
func UpdateAttribute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)

		index, err := attributeIndex(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var patch models.AttributePatch
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, r, err)
			return
		}
		if err := session.UpdateAttribute(index, patch); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// RemoveAttribute removes one attribute
func RemoveAttribute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)

		index, err := attributeIndex(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := session.RemoveAttribute(index); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// SetCollectionImage stages the logo or banner of a new collection
func SetCollectionImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)

		var kind creation.CollectionImage
		var limit int64
		switch creation.CollectionImage(chi.URLParam(r, "kind")) {
		case creation.CollectionLogo:
			kind, limit = creation.CollectionLogo, creation.MaxLogoBytes
		case creation.CollectionBanner:
			kind, limit = creation.CollectionBanner, creation.MaxBannerBytes
		default:
			writeError(w, r, fmt.Errorf("%w: collection image must be logo or banner", errNotFound))
			return
		}

		file, err := readUpload(w, r, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		handle, err := session.SetCollectionImage(kind, file)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, previewResponse{PreviewURL: handle, State: session.Snapshot()})
	}
}

// SetStep jumps to a step
func SetStep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)

		var req stepRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		step, err := creation.ParseStep(req.Step)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := session.SetStep(step); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// NextStep advances to the following step
func NextStep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)
		if _, err := session.Next(); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// PreviousStep goes back one step
func PreviousStep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)
		session.Back()
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// SaveDraft persists the form
func SaveDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)
		if err := session.SaveDraft(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// LoadDraft restores the saved form
func LoadDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)
		loaded, err := session.LoadDraft(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, draftResponse{Loaded: loaded, State: session.Snapshot()})
	}
}

// ResetCreation discards the form and its draft
func ResetCreation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)
		if err := session.Reset(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}

// SubmitCreation creates the item
func SubmitCreation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)
		itemID, err := session.Submit(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, submitResponse{ItemID: itemID})
	}
}

// GetFees returns the cost overview of the current form
func GetFees() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, mustSession(r).Fees())
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func attributeIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, fmt.Errorf("%w: attribute index must be a number", errBadRequest)
	}
	return index, nil
}

// model formats many platforms do not register a content type for
var modelExtensions = map[string]string{
	".glb":  "model/gltf-binary",
	".gltf": "model/gltf+json",
}

// sniffContentType detects the type of an upload sent without a specific
// one, from its bytes first and its file name second
func sniffContentType(name string, data []byte) string {
	detected := mimetype.Detect(data)
	if !detected.Is("application/octet-stream") && !detected.Is("text/plain") && !detected.Is("application/json") {
		return detected.String()
	}
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := modelExtensions[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return detected.String()
}

// readUpload reads the multipart "file" field into memory
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) (*models.StagedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+uploadOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", creation.ErrFileTooLarge, limit)
		}
		return nil, fmt.Errorf("%w: expected a multipart upload: %v", errBadRequest, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field: %v", errBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = sniffContentType(header.Filename, data)
	}

	return &models.StagedFile{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
