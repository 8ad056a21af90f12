package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/ledger"
	"github.com/tailorbook/tailorbook-api/models"
	"github.com/tailorbook/tailorbook-api/services"
)

type uploadFunc func(services.FileService, context.Context, *multipart.FileHeader) (string, error)

var (
	uploadImage     uploadFunc = services.FileService.UploadImage
	uploadRecording uploadFunc = services.FileService.UploadRecording
)

// storeUpload saves the "file" form field; on failure the error response is already written
func storeUpload(c *gin.Context, upload uploadFunc) (string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "NO_FILE", "A file is required in the \"file\" form field")
		return "", false
	}

	files := services.GetFileService()
	if files == nil {
		respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "File storage is not configured")
		return "", false
	}

	key, err := upload(files, c.Request.Context(), fileHeader)
	if err != nil {
		respondFileError(c, err)
		return "", false
	}
	return key, true
}

func respondUploaded(c *gin.Context, key string) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"storage_key": key,
			"url":         fileURL(c.Request.Context(), key),
		},
	})
}

// UploadImage handles POST /api/v1/uploads/images - stores an image to reference when creating a dress
func UploadImage(c *gin.Context) {
	if _, ok := currentTailor(c); !ok {
		return
	}
	if key, ok := storeUpload(c, uploadImage); ok {
		respondUploaded(c, key)
	}
}

// UploadRecording handles POST /api/v1/uploads/recordings
func UploadRecording(c *gin.Context) {
	if _, ok := currentTailor(c); !ok {
		return
	}
	if key, ok := storeUpload(c, uploadRecording); ok {
		respondUploaded(c, key)
	}
}

// AddDressImage handles POST /api/v1/dresses/:id/images (multipart: file, kind)
func AddDressImage(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, dressID, ok := orderOf(c, tailor.ID, ledger.EntryDress)
	if !ok {
		return
	}

	key, ok := storeUpload(c, uploadImage)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		image, err := t.AddImage(dressID, ledger.ImageInput{
			Kind:       models.ImageKind(c.PostForm("kind")),
			StorageKey: key,
		})
		if err != nil {
			return nil, err
		}
		image.URL = fileURL(c.Request.Context(), key)
		return entryResult(t, "image", image)
	})
	if !ok {
		// the row never committed, so nothing references the upload
		releaseFiles(c.Request.Context(), []string{key})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// DeleteImage handles DELETE /api/v1/images/:id; the stored file is removed after commit
func DeleteImage(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, imageID, ok := orderOf(c, tailor.ID, ledger.EntryImage)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		if err := t.DeleteImage(imageID); err != nil {
			return nil, err
		}
		return deletedResult(t, imageID)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// AddDressRecording handles POST /api/v1/dresses/:id/recordings (multipart: file, duration_sec)
func AddDressRecording(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, dressID, ok := orderOf(c, tailor.ID, ledger.EntryDress)
	if !ok {
		return
	}

	duration := 0
	if raw := c.PostForm("duration_sec"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "duration_sec must be a non-negative integer")
			return
		}
		duration = n
	}

	key, ok := storeUpload(c, uploadRecording)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		recording, err := t.AddRecording(dressID, ledger.RecordingInput{StorageKey: key, DurationSec: duration})
		if err != nil {
			return nil, err
		}
		recording.URL = fileURL(c.Request.Context(), key)
		return entryResult(t, "recording", recording)
	})
	if !ok {
		releaseFiles(c.Request.Context(), []string{key})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// DeleteRecording handles DELETE /api/v1/recordings/:id
func DeleteRecording(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, recordingID, ok := orderOf(c, tailor.ID, ledger.EntryRecording)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		if err := t.DeleteRecording(recordingID); err != nil {
			return nil, err
		}
		return deletedResult(t, recordingID)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
