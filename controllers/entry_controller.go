package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/ledger"
)

// AddExpense handles POST /api/v1/orders/:id/expenses
func AddExpense(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		expense, err := t.AddExpense(req.input())
		if err != nil {
			return nil, err
		}
		return entryResult(t, "expense", expense)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func DeleteExpense(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, expenseID, ok := orderOf(c, tailor.ID, ledger.EntryExpense)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		if err := t.DeleteExpense(expenseID); err != nil {
			return nil, err
		}
		return deletedResult(t, expenseID)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// AddDiscount handles POST /api/v1/orders/:id/discounts
func AddDiscount(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		discount, err := t.AddDiscount(ledger.DiscountInput{Title: req.Title, Amount: req.Amount})
		if err != nil {
			return nil, err
		}
		return entryResult(t, "discount", discount)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// DeleteDiscount handles DELETE /api/v1/discounts/:id
func DeleteDiscount(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, discountID, ok := orderOf(c, tailor.ID, ledger.EntryDiscount)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		if err := t.DeleteDiscount(discountID); err != nil {
			return nil, err
		}
		return deletedResult(t, discountID)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// AddPayment handles POST /api/v1/orders/:id/payments
func AddPayment(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		payment, err := t.AddPayment(req.input())
		if err != nil {
			return nil, err
		}
		return entryResult(t, "payment", payment)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// DeletePayment handles DELETE /api/v1/payments/:id
func DeletePayment(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}
	orderID, paymentID, ok := orderOf(c, tailor.ID, ledger.EntryPayment)
	if !ok {
		return
	}

	data, ok := withOrder(c, tailor.ID, orderID, func(t *ledger.OrderTx) (gin.H, error) {
		if err := t.DeletePayment(paymentID); err != nil {
			return nil, err
		}
		return deletedResult(t, paymentID)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
