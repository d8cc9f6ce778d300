package creation

import (
	"fmt"
	"strings"

	"github.com/satonic/satonic-storefront/internal/models"
)

const (
	MaxAssetBytes  int64 = 50 * 1024 * 1024
	MaxLogoBytes   int64 = 5 * 1024 * 1024
	MaxBannerBytes int64 = 10 * 1024 * 1024
)

// CollectionImage names one of the images of a new collection
type CollectionImage string

const (
	CollectionLogo   CollectionImage = "logo"
	CollectionBanner CollectionImage = "banner"
)

// PreviewAllocator hands out locally scoped preview handles. Every handle
// returned by Acquire must be passed to Release exactly once.
type PreviewAllocator interface {
	Acquire(file *models.StagedFile) (string, error)
	Release(handle string) error
}

// ClassifyFileType derives the display kind from a declared content type
func ClassifyFileType(contentType string) (models.FileType, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	switch {
	case strings.HasPrefix(ct, "image/"):
		return models.FileTypeImage, nil
	case strings.HasPrefix(ct, "video/"):
		return models.FileTypeVideo, nil
	case strings.HasPrefix(ct, "audio/"):
		return models.FileTypeAudio, nil
	case strings.Contains(ct, "gltf"), strings.Contains(ct, "glb"), strings.HasPrefix(ct, "model/"):
		return models.FileTypeModel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, contentType)
}

func checkAsset(file *models.StagedFile) (models.FileType, error) {
	if file == nil || file.Size <= 0 {
		return "", ErrEmptyFile
	}
	if file.Size > MaxAssetBytes {
		return "", fmt.Errorf("%w: %s exceeds the maximum file size of 50MB", ErrFileTooLarge, file.Name)
	}
	return ClassifyFileType(file.ContentType)
}

func checkCollectionImage(kind CollectionImage, file *models.StagedFile) error {
	if file == nil || file.Size <= 0 {
		return ErrEmptyFile
	}

	var limit int64
	var label string
	switch kind {
	case CollectionLogo:
		limit, label = MaxLogoBytes, "Logo image must be under 5MB"
	case CollectionBanner:
		limit, label = MaxBannerBytes, "Banner image must be under 10MB"
	default:
		return fmt.Errorf("%w: collection image %q", ErrInvalidField, kind)
	}
	if file.Size > limit {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, label)
	}

	fileType, err := ClassifyFileType(file.ContentType)
	if err != nil {
		return err
	}
	if fileType != models.FileTypeImage {
		return fmt.Errorf("%w: collection images must be images", ErrUnsupportedFileType)
	}
	return nil
}

// hasLiveFile reports whether a preview still carries its file handle.
// Previews restored from a draft only have metadata.
func hasLiveFile(p models.AssetPreview) bool {
	return p.File != nil
}
