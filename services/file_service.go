package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"golang.org/x/sync/errgroup"

	"github.com/tailorbook/tailorbook-api/config"
	"github.com/tailorbook/tailorbook-api/utils"
)

const (
	imagePrefix     = "dresses"
	recordingPrefix = "recordings"
	customerPrefix  = "customers"

	// releaseConcurrency bounds parallel S3 deletes after a commit
	releaseConcurrency = 4
)

// FileService stores dress images, voice recordings and customer pictures.
// The ledger only keeps the keys it returns.
type FileService interface {
	// UploadImage validates and uploads a dress image, returns the storage key
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// UploadCustomerPicture validates and uploads a customer's picture
	UploadCustomerPicture(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// UploadRecording validates and uploads a voice note, returns the storage key
	UploadRecording(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// GetFileURL generates a URL for reading a stored file
	GetFileURL(ctx context.Context, key string) (string, error)

	// DeleteFile removes a file from storage
	DeleteFile(ctx context.Context, key string) error

	// ReleaseFiles deletes files whose rows were removed by a committed transaction.
	// Failures are logged; the ledger change is already durable.
	ReleaseFiles(ctx context.Context, keys []string)
}

// S3FileService implements FileService on top of S3Interface
type S3FileService struct {
	s3Service S3Interface
}

var fileServiceInstance FileService

// InitFileService initializes the file service with an S3 backend
func InitFileService(s3Service S3Interface) FileService {
	fileServiceInstance = &S3FileService{
		s3Service: s3Service,
	}
	return fileServiceInstance
}

// GetFileService returns the initialized file service instance
func GetFileService() FileService {
	return fileServiceInstance
}

// SetFileService sets the file service instance (primarily for testing)
func SetFileService(service FileService) {
	fileServiceInstance = service
}

// UploadImage validates and uploads a dress image to S3
func (s *S3FileService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key, err := s.s3Service.UploadFile(ctx, fileHeader, imagePrefix)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// UploadCustomerPicture validates and uploads a customer picture to S3
func (s *S3FileService) UploadCustomerPicture(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key, err := s.s3Service.UploadFile(ctx, fileHeader, customerPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to upload customer picture: %w", err)
	}
	return key, nil
}

// UploadRecording validates and uploads a voice note to S3
func (s *S3FileService) UploadRecording(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateAudioFile(fileHeader); err != nil {
		return "", err
	}

	key, err := s.s3Service.UploadFile(ctx, fileHeader, recordingPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to upload recording: %w", err)
	}
	return key, nil
}

// GetFileURL generates a presigned URL for a stored file
func (s *S3FileService) GetFileURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate file URL: %w", err)
	}
	return url, nil
}

// DeleteFile deletes a file from S3
func (s *S3FileService) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ReleaseFiles deletes keys concurrently and logs the ones that could not be removed
func (s *S3FileService) ReleaseFiles(ctx context.Context, keys []string) {
	log := config.GetLogger()

	var g errgroup.Group
	g.SetLimit(releaseConcurrency)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			if err := s.DeleteFile(ctx, key); err != nil {
				log.Warn("failed to release stored file", "key", key, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
