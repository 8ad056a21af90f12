package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/config"
	"github.com/tailorbook/tailorbook-api/ledger"
	"github.com/tailorbook/tailorbook-api/middleware"
	"github.com/tailorbook/tailorbook-api/models"
	"github.com/tailorbook/tailorbook-api/services"
	"github.com/tailorbook/tailorbook-api/utils"
)

var ledgerInstance *ledger.Ledger

// InitLedger sets the ledger used by the order handlers
func InitLedger(l *ledger.Ledger) {
	ledgerInstance = l
}

// getLedger falls back to a ledger over the current database so tests can swap config.DB
func getLedger() *ledger.Ledger {
	if ledgerInstance != nil {
		return ledgerInstance
	}
	return ledger.New(config.GetDB(),
		ledger.WithLogger(config.GetLogger()),
		ledger.WithReleaseFunc(releaseFiles),
	)
}

func releaseFiles(ctx context.Context, keys []string) {
	if files := services.GetFileService(); files != nil {
		files.ReleaseFiles(ctx, keys)
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

var notFoundCodes = []struct {
	sentinel error
	code     string
}{
	{ledger.ErrOrderNotFound, "ORDER_NOT_FOUND"},
	{ledger.ErrCustomerNotFound, "CUSTOMER_NOT_FOUND"},
	{ledger.ErrDressNotFound, "DRESS_NOT_FOUND"},
	{ledger.ErrClothNotFound, "CLOTH_NOT_FOUND"},
	{ledger.ErrExpenseNotFound, "EXPENSE_NOT_FOUND"},
	{ledger.ErrDiscountNotFound, "DISCOUNT_NOT_FOUND"},
	{ledger.ErrPaymentNotFound, "PAYMENT_NOT_FOUND"},
	{ledger.ErrAttachmentNotFound, "ATTACHMENT_NOT_FOUND"},
}

// respondLedgerError translates a ledger failure into the error envelope
func respondLedgerError(c *gin.Context, err error) {
	message := err.Error()
	var lerr *ledger.Error
	if errors.As(err, &lerr) && lerr.Message != "" {
		message = lerr.Message
	}

	switch ledger.CodeOf(err) {
	case ledger.CodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": message,
			},
		})
	case ledger.CodeNotFound:
		code := "NOT_FOUND"
		for _, nf := range notFoundCodes {
			if errors.Is(err, nf.sentinel) {
				code = nf.code
				break
			}
		}
		respondError(c, http.StatusNotFound, code, message)
	case ledger.CodeInvalidTransition:
		respondError(c, http.StatusConflict, "INVALID_TRANSITION", message)
	case ledger.CodeConflict:
		respondError(c, http.StatusConflict, "CONCURRENCY_CONFLICT", "The order is being updated by another request, please retry")
	case ledger.CodeRecalculation:
		config.GetLogger().Error("order recalculation failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "RECALCULATION_ERROR", "Failed to recalculate order totals")
	default:
		config.GetLogger().Error("ledger operation failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order")
	}
}

func respondFileError(c *gin.Context, err error) {
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}
	config.GetLogger().Error("file upload failed", "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload file")
}

// currentTailor resolves the calling tailor from the JWT subject; it writes the error response itself
func currentTailor(c *gin.Context) (*models.Tailor, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	var tailor models.Tailor
	res := config.GetDB().WithContext(c.Request.Context()).Where("auth0_id = ?", auth0ID).Limit(1).Find(&tailor)
	if res.Error != nil {
		config.GetLogger().Error("failed to load tailor", "auth0_id", auth0ID, "error", res.Error)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load tailor profile")
		return nil, false
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "TAILOR_NOT_FOUND", "Tailor profile not found. Please create a profile first.")
		return nil, false
	}
	return &tailor, true
}

// pathID parses a numeric route parameter; it writes the error response itself
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+": "+c.Param(name))
		return 0, false
	}
	return id, true
}

// fileURL presigns a stored key; failures leave the URL empty rather than failing the read
func fileURL(ctx context.Context, key string) *string {
	files := services.GetFileService()
	if files == nil || key == "" {
		return nil
	}
	url, err := files.GetFileURL(ctx, key)
	if err != nil {
		config.GetLogger().Warn("failed to presign file", "key", key, "error", err)
		return nil
	}
	return &url
}

// attachURLs fills the computed URL fields of every attachment on the order
func attachURLs(ctx context.Context, order *models.Order) {
	if order.Customer != nil && order.Customer.PictureKey != nil {
		order.Customer.PictureURL = fileURL(ctx, *order.Customer.PictureKey)
	}
	for i := range order.Dresses {
		dress := &order.Dresses[i]
		for j := range dress.Images {
			dress.Images[j].URL = fileURL(ctx, dress.Images[j].StorageKey)
		}
		for j := range dress.Recordings {
			dress.Recordings[j].URL = fileURL(ctx, dress.Recordings[j].StorageKey)
		}
	}
}
