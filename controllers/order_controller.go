package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/ledger"
	"github.com/tailorbook/tailorbook-api/models"
)

// withOrder runs fn in the order's ledger transaction; on failure the error response is already written
func withOrder[T any](c *gin.Context, tailorID, orderID uint, fn func(*ledger.OrderTx) (T, error)) (T, bool) {
	out, err := ledger.WithOrderTransaction(c.Request.Context(), getLedger(), tailorID, orderID, fn)
	if err != nil {
		respondLedgerError(c, err)
		var zero T
		return zero, false
	}
	return out, true
}

// orderOf resolves the order owning an entry addressed by its own id
func orderOf(c *gin.Context, tailorID uint, entry ledger.Entry) (uint, uint, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return 0, 0, false
	}
	orderID, err := getLedger().OrderOf(c.Request.Context(), tailorID, entry, id)
	if err != nil {
		respondLedgerError(c, err)
		return 0, 0, false
	}
	return orderID, id, true
}

// CreateOrder handles POST /api/v1/orders - an empty order, or one with its first dress
func CreateOrder(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := getLedger().CreateOrder(c.Request.Context(), tailor.ID, ledger.NewOrder{
		CustomerID: req.CustomerID,
		ShopID:     req.ShopID,
		Name:       req.Name,
		Notes:      req.Notes,
	}, req.Dress.input())
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	full, err := getLedger().GetOrder(c.Request.Context(), tailor.ID, order.ID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	attachURLs(c.Request.Context(), full)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    full,
	})
}

// ListOrders handles GET /api/v1/orders?customer_id=&status=&payment_status=&limit=&offset=
func ListOrders(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	filter := ledger.OrderFilter{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
	}
	if raw := c.Query("customer_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer_id: "+raw)
			return
		}
		filter.CustomerID = uint(id)
	}
	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	orders, err := getLedger().ListOrders(c.Request.Context(), tailor.ID, filter)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return n, nil
}

// GetOrder handles GET /api/v1/orders/:id - the order with dresses and ledger entries
func GetOrder(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := getLedger().GetOrder(c.Request.Context(), tailor.ID, orderID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	attachURLs(c.Request.Context(), order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrderSummary handles GET /api/v1/orders/:id/summary
func GetOrderSummary(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	summary, err := getLedger().Summary(c.Request.Context(), tailor.ID, orderID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
func UpdateOrderStatus(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := getLedger().SetOrderStatus(c.Request.Context(), tailor.ID, orderID, models.OrderStatus(req.Status))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ledger.SummaryOf(&order),
	})
}

// RecalculateOrder handles POST /api/v1/orders/:id/recalculate - recomputes totals from stored rows
func RecalculateOrder(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := getLedger().RecalculateOrder(c.Request.Context(), tailor.ID, orderID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ledger.SummaryOf(&order),
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func DeleteOrder(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := getLedger().DeleteOrder(c.Request.Context(), tailor.ID, orderID); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": orderID, "deleted": true},
	})
}
