package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MaxImageSize is 10MB in bytes
	MaxImageSize = 10 * 1024 * 1024
	// MaxRecordingSize is 25MB in bytes
	MaxRecordingSize = 25 * 1024 * 1024
)

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".heic": "image/heic",
}

var audioContentTypes = map[string]string{
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile checks a dress or customer picture's format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	return validateFile(fileHeader, MaxImageSize, imageContentTypes)
}

// ValidateAudioFile checks a voice note's format and size
func ValidateAudioFile(fileHeader *multipart.FileHeader) error {
	return validateFile(fileHeader, MaxRecordingSize, audioContentTypes)
}

func validateFile(fileHeader *multipart.FileHeader, maxSize int64, allowed map[string]string) error {
	if fileHeader == nil {
		return &FileUploadError{Code: "NO_FILE", Message: "No file provided"}
	}

	if fileHeader.Size > maxSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", maxSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowed[ext]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s files are allowed", strings.Join(extensions(allowed), ", ")),
		}
	}

	return nil
}

// ContentType returns the MIME type stored with an upload, by file extension
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := imageContentTypes[ext]; ok {
		return ct
	}
	if ct, ok := audioContentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

func extensions(allowed map[string]string) []string {
	exts := make([]string, 0, len(allowed))
	for ext := range allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
