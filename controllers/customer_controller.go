package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/config"
	"github.com/tailorbook/tailorbook-api/models"
	"github.com/tailorbook/tailorbook-api/services"
)

// CreateCustomerRequest is bound from JSON or from multipart form fields
type CreateCustomerRequest struct {
	Name    string  `json:"name" form:"name" binding:"required"`
	Phone   string  `json:"phone" form:"phone"`
	Address *string `json:"address" form:"address"`
	ShopID  *uint   `json:"shop_id" form:"shop_id"`
}

// CreateCustomer handles POST /api/v1/customers. A multipart request may carry a "picture" file.
func CreateCustomer(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	var req CreateCustomerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondValidation(c, errors.New("name must not be blank"))
		return
	}

	customer := models.Customer{
		TailorID: tailor.ID,
		ShopID:   tailor.ShopID,
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  req.Address,
	}
	if req.ShopID != nil {
		customer.ShopID = *req.ShopID
	}

	if picture, err := c.FormFile("picture"); err == nil {
		files := services.GetFileService()
		if files == nil {
			respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "File storage is not configured")
			return
		}
		key, err := files.UploadCustomerPicture(c.Request.Context(), picture)
		if err != nil {
			respondFileError(c, err)
			return
		}
		customer.PictureKey = &key
	}

	if err := config.GetDB().WithContext(c.Request.Context()).Create(&customer).Error; err != nil {
		if customer.PictureKey != nil {
			releaseFiles(c.Request.Context(), []string{*customer.PictureKey})
		}
		config.GetLogger().Error("failed to create customer", "tailor_id", tailor.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create customer")
		return
	}

	if customer.PictureKey != nil {
		customer.PictureURL = fileURL(c.Request.Context(), *customer.PictureKey)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    customer,
	})
}

// ListCustomers handles GET /api/v1/customers?q= - the tailor's customers by name
func ListCustomers(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	q := config.GetDB().WithContext(c.Request.Context()).Where("tailor_id = ?", tailor.ID)
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}

	var customers []models.Customer
	if err := q.Order("name, id").Find(&customers).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch customers")
		return
	}

	for i := range customers {
		if customers[i].PictureKey != nil {
			customers[i].PictureURL = fileURL(c.Request.Context(), *customers[i].PictureKey)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    customers,
	})
}

// GetCustomer handles GET /api/v1/customers/:id
func GetCustomer(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	res := config.GetDB().WithContext(c.Request.Context()).
		Where("id = ? AND tailor_id = ?", id, tailor.ID).
		Limit(1).
		Find(&customer)
	if res.Error != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch customer")
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	if customer.PictureKey != nil {
		customer.PictureURL = fileURL(c.Request.Context(), *customer.PictureKey)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    customer,
	})
}
