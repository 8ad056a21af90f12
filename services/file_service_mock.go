package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/tailorbook/tailorbook-api/utils"
)

// MockFileService is an in-memory FileService for tests
type MockFileService struct {
	files    map[string][]byte
	released []string
	mu       sync.RWMutex
}

// NewMockFileService creates a new mock file service
func NewMockFileService() *MockFileService {
	return &MockFileService{
		files: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global file service instance for testing
func (m *MockFileService) SetAsMockForTesting() {
	SetFileService(m)
}

func (m *MockFileService) store(fileHeader *multipart.FileHeader, prefix string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("%s/mock_%s", prefix, fileHeader.Filename)

	m.mu.Lock()
	m.files[key] = content
	m.mu.Unlock()

	return key, nil
}

// UploadImage simulates uploading a dress image
func (m *MockFileService) UploadImage(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}
	return m.store(fileHeader, imagePrefix)
}

// UploadCustomerPicture simulates uploading a customer picture
func (m *MockFileService) UploadCustomerPicture(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}
	return m.store(fileHeader, customerPrefix)
}

// UploadRecording simulates uploading a voice note
func (m *MockFileService) UploadRecording(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateAudioFile(fileHeader); err != nil {
		return "", err
	}
	return m.store(fileHeader, recordingPrefix)
}

// GetFileURL simulates generating a URL for a stored file
func (m *MockFileService) GetFileURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.files[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock storage: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// DeleteFile simulates deleting a file
func (m *MockFileService) DeleteFile(_ context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()

	return nil
}

// ReleaseFiles records and deletes released keys
func (m *MockFileService) ReleaseFiles(ctx context.Context, keys []string) {
	for _, key := range keys {
		_ = m.DeleteFile(ctx, key)
	}
	m.mu.Lock()
	m.released = append(m.released, keys...)
	m.mu.Unlock()
}

// FileExists checks if a file exists in mock storage
func (m *MockFileService) FileExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[key]
	return exists
}

// Released returns every key passed to ReleaseFiles (for testing assertions)
func (m *MockFileService) Released() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.released...)
}

// Clear removes all files from mock storage
func (m *MockFileService) Clear() {
	m.mu.Lock()
	m.files = make(map[string][]byte)
	m.released = nil
	m.mu.Unlock()
}
