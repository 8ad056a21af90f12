package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/middleware"
)

// RegisterRoutes mounts the authenticated API on group. auth validates the caller's token.
func RegisterRoutes(group *gin.RouterGroup, auth gin.HandlerFunc) {
	read := middleware.RequireScope(middleware.ScopeReadOrders)
	write := middleware.RequireScope(middleware.ScopeWriteOrders)

	tailors := group.Group("/tailors", auth)
	{
		tailors.POST("", CreateTailor)
		tailors.GET("/me", GetMyProfile)
		tailors.PUT("/me", UpdateMyProfile)
	}

	api := group.Group("", auth)

	api.POST("/customers", write, CreateCustomer)
	api.GET("/customers", read, ListCustomers)
	api.GET("/customers/:id", read, GetCustomer)

	api.POST("/orders", write, CreateOrder)
	api.GET("/orders", read, ListOrders)
	api.GET("/orders/:id", read, GetOrder)
	api.GET("/orders/:id/summary", read, GetOrderSummary)
	api.PATCH("/orders/:id/status", write, UpdateOrderStatus)
	api.POST("/orders/:id/recalculate", write, RecalculateOrder)
	api.DELETE("/orders/:id", write, DeleteOrder)

	api.POST("/orders/:id/dresses", write, AddDress)
	api.PUT("/dresses/:id", write, UpdateDress)
	api.DELETE("/dresses/:id", write, DeleteDress)
	api.POST("/dresses/:id/measurements", write, AddMeasurement)
	api.POST("/dresses/:id/clothes", write, AddCloth)
	api.PUT("/clothes/:id", write, UpdateCloth)
	api.DELETE("/clothes/:id", write, DeleteCloth)

	api.POST("/orders/:id/expenses", write, AddExpense)
	api.DELETE("/expenses/:id", write, DeleteExpense)
	api.POST("/orders/:id/discounts", write, AddDiscount)
	api.DELETE("/discounts/:id", write, DeleteDiscount)
	api.POST("/orders/:id/payments", write, AddPayment)
	api.DELETE("/payments/:id", write, DeletePayment)

	api.POST("/uploads/images", write, UploadImage)
	api.POST("/uploads/recordings", write, UploadRecording)
	api.POST("/dresses/:id/images", write, AddDressImage)
	api.DELETE("/images/:id", write, DeleteImage)
	api.POST("/dresses/:id/recordings", write, AddDressRecording)
	api.DELETE("/recordings/:id", write, DeleteRecording)
}
