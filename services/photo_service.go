package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/bluebay-mechanical/field-service-api/utils"
)

// PhotoKeyPrefix is the storage folder for work order photos
const PhotoKeyPrefix = "work-order-photos"

// StoredPhoto describes an uploaded photo
type StoredPhoto struct {
	Key string
	URL string
}

// PhotoService validates and stores work order photos
type PhotoService struct {
	storage Storage
}

// NewPhotoService creates a photo service on top of storage
func NewPhotoService(storage Storage) *PhotoService {
	return &PhotoService{storage: storage}
}

// Upload validates fileHeader as an image and writes it to storage.
// Validation failures are returned as *utils.FileUploadError.
func (s *PhotoService) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*StoredPhoto, error) {
	contentType, err := utils.ValidateImageFile(fileHeader)
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	key := utils.StorageKey(PhotoKeyPrefix, fileHeader.Filename)
	if err := s.storage.Put(ctx, key, file, fileHeader.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	return &StoredPhoto{Key: key, URL: s.storage.URL(key)}, nil
}

// Remove deletes the photo stored under key. A missing object is not an error.
func (s *PhotoService) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check photo: %w", err)
	}
	if !exists {
		return nil
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
