package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/ledger"
)

// entryResult pairs a changed entry with the order's refreshed totals
func entryResult(t *ledger.OrderTx, key string, entry interface{}) (gin.H, error) {
	order, err := t.Recalculate()
	if err != nil {
		return nil, err
	}
	return gin.H{key: entry, "order": ledger.SummaryOf(&order)}, nil
}

func deletedResult(t *ledger.OrderTx, id uint) (gin.H, error) {
	return entryResult(t, "deleted", gin.H{"id": id})
}

// AddDress handles POST /api/v1/orders/:id/dresses
func AddDress(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req DressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		dress, err := t.AddDress(*req.input())
		if err != nil {
			return nil, err
		}
		return entryResult(t, "dress", dress)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// UpdateDress handles PUT /api/v1/dresses/:id
func UpdateDress(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	var req UpdateDressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	orderID, dressID, ok := orderOf(c, tailor.ID, ledger.EntryDress)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		dress, err := t.UpdateDressDetails(dressID, req.input())
		if err != nil {
			return nil, err
		}
		return entryResult(t, "dress", dress)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// DeleteDress handles DELETE /api/v1/dresses/:id - removes the dress and everything recorded for it
func DeleteDress(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, dressID, ok := orderOf(c, tailor.ID, ledger.EntryDress)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		if err := t.DeleteDress(dressID); err != nil {
			return nil, err
		}
		return deletedResult(t, dressID)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// AddMeasurement handles POST /api/v1/dresses/:id/measurements
func AddMeasurement(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	var req MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	orderID, dressID, ok := orderOf(c, tailor.ID, ledger.EntryDress)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		measurement, err := t.AddMeasurement(dressID, *req.input())
		if err != nil {
			return nil, err
		}
		return entryResult(t, "measurement", measurement)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// AddCloth handles POST /api/v1/dresses/:id/clothes
func AddCloth(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	var req ClothRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	orderID, dressID, ok := orderOf(c, tailor.ID, ledger.EntryDress)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		cloth, err := t.AddCloth(dressID, req.input())
		if err != nil {
			return nil, err
		}
		return entryResult(t, "cloth", cloth)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// UpdateCloth handles PUT /api/v1/clothes/:id
func UpdateCloth(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	var req UpdateClothRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	orderID, clothID, ok := orderOf(c, tailor.ID, ledger.EntryCloth)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		cloth, err := t.UpdateCloth(clothID, req.input())
		if err != nil {
			return nil, err
		}
		return entryResult(t, "cloth", cloth)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// DeleteCloth handles DELETE /api/v1/clothes/:id - also removes the cloth's generated expense
func DeleteCloth(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, clothID, ok := orderOf(c, tailor.ID, ledger.EntryCloth)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		if err := t.DeleteCloth(clothID); err != nil {
			return nil, err
		}
		return deletedResult(t, clothID)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
