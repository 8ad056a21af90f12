package controllers

import (
	"time"

	"github.com/tailorbook/tailorbook-api/ledger"
	"github.com/tailorbook/tailorbook-api/models"
)

// Money fields are integer minor currency units.

type MeasurementRequest struct {
	Values map[string]string `json:"values" binding:"required"`
	Notes  *string           `json:"notes"`
}

func (r *MeasurementRequest) input() *ledger.MeasurementInput {
	if r == nil {
		return nil
	}
	return &ledger.MeasurementInput{Values: r.Values, Notes: r.Notes}
}

// ImageRequest references a file returned by POST /uploads/images
type ImageRequest struct {
	Kind       string `json:"kind"`
	StorageKey string `json:"storage_key" binding:"required"`
}

// RecordingRequest references a file returned by POST /uploads/recordings
type RecordingRequest struct {
	StorageKey  string `json:"storage_key" binding:"required"`
	DurationSec int    `json:"duration_sec" binding:"gte=0"`
}

type ClothRequest struct {
	Title        string  `json:"title" binding:"required"`
	Length       float64 `json:"length" binding:"gte=0"`
	Unit         string  `json:"unit"`
	ProvidedBy   string  `json:"provided_by" binding:"required"`
	Price        *int64  `json:"price"`
	DressImageID *uint   `json:"dress_image_id"`
	ImageIndex   *int    `json:"image_index"`
}

func (r ClothRequest) input() ledger.ClothInput {
	return ledger.ClothInput{
		Title:        r.Title,
		Length:       r.Length,
		Unit:         r.Unit,
		ProvidedBy:   r.ProvidedBy,
		Price:        r.Price,
		DressImageID: r.DressImageID,
		ImageIndex:   r.ImageIndex,
	}
}

type ExpenseRequest struct {
	Title   string `json:"title" binding:"required"`
	Amount  int64  `json:"amount" binding:"gte=0"`
	DressID *uint  `json:"dress_id"`
}

func (r ExpenseRequest) input() ledger.ExpenseInput {
	return ledger.ExpenseInput{Title: r.Title, Amount: r.Amount, DressID: r.DressID}
}

// DressRequest is a dress with everything recorded for it at intake
type DressRequest struct {
	CategoryID   *uint               `json:"category_id"`
	Type         string              `json:"type" binding:"required"`
	Quantity     int                 `json:"quantity" binding:"required,gt=0"`
	Price        int64               `json:"price" binding:"gte=0"`
	DeliveryDate *time.Time          `json:"delivery_date"`
	TrialDate    *time.Time          `json:"trial_date"`
	Notes        *string             `json:"notes"`
	Measurement  *MeasurementRequest `json:"measurement"`
	Images       []ImageRequest      `json:"images" binding:"dive"`
	Clothes      []ClothRequest      `json:"clothes" binding:"dive"`
	Expenses     []ExpenseRequest    `json:"expenses" binding:"dive"`
	Recording    *RecordingRequest   `json:"recording"`
}

func (r *DressRequest) input() *ledger.DressInput {
	if r == nil {
		return nil
	}
	in := &ledger.DressInput{
		CategoryID:   r.CategoryID,
		Type:         models.DressType(r.Type),
		Quantity:     r.Quantity,
		Price:        r.Price,
		DeliveryDate: r.DeliveryDate,
		TrialDate:    r.TrialDate,
		Notes:        r.Notes,
		Measurement:  r.Measurement.input(),
	}
	for _, img := range r.Images {
		in.Images = append(in.Images, ledger.ImageInput{Kind: models.ImageKind(img.Kind), StorageKey: img.StorageKey})
	}
	for _, cloth := range r.Clothes {
		in.Clothes = append(in.Clothes, cloth.input())
	}
	for _, exp := range r.Expenses {
		in.Expenses = append(in.Expenses, exp.input())
	}
	if r.Recording != nil {
		in.Recording = &ledger.RecordingInput{StorageKey: r.Recording.StorageKey, DurationSec: r.Recording.DurationSec}
	}
	return in
}

// UpdateDressRequest changes selected dress fields
type UpdateDressRequest struct {
	CategoryID   *uint      `json:"category_id"`
	Type         *string    `json:"type"`
	Quantity     *int       `json:"quantity"`
	Price        *int64     `json:"price"`
	DeliveryDate *time.Time `json:"delivery_date"`
	TrialDate    *time.Time `json:"trial_date"`
	Status       *string    `json:"status"`
	Notes        *string    `json:"notes"`
}

func (r UpdateDressRequest) input() ledger.DressUpdate {
	in := ledger.DressUpdate{
		CategoryID:   r.CategoryID,
		Quantity:     r.Quantity,
		Price:        r.Price,
		DeliveryDate: r.DeliveryDate,
		TrialDate:    r.TrialDate,
		Notes:        r.Notes,
	}
	if r.Type != nil {
		t := models.DressType(*r.Type)
		in.Type = &t
	}
	if r.Status != nil {
		s := models.DressStatus(*r.Status)
		in.Status = &s
	}
	return in
}

// UpdateClothRequest changes selected cloth fields; clear_price removes the price
type UpdateClothRequest struct {
	Title      *string  `json:"title"`
	Length     *float64 `json:"length"`
	Unit       *string  `json:"unit"`
	ProvidedBy *string  `json:"provided_by"`
	Price      *int64   `json:"price"`
	ClearPrice bool     `json:"clear_price"`
}

func (r UpdateClothRequest) input() ledger.ClothUpdate {
	return ledger.ClothUpdate{
		Title:      r.Title,
		Length:     r.Length,
		Unit:       r.Unit,
		ProvidedBy: r.ProvidedBy,
		Price:      r.Price,
		ClearPrice: r.ClearPrice,
	}
}

type DiscountRequest struct {
	Title  string `json:"title" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

type PaymentRequest struct {
	Title  string     `json:"title"`
	Method string     `json:"method"`
	Amount int64      `json:"amount" binding:"required,gt=0"`
	PaidAt *time.Time `json:"paid_at"`
}

func (r PaymentRequest) input() ledger.PaymentInput {
	in := ledger.PaymentInput{
		Title:  r.Title,
		Method: models.PaymentMethod(r.Method),
		Amount: r.Amount,
	}
	if r.PaidAt != nil {
		in.PaidAt = *r.PaidAt
	}
	return in
}

type CreateOrderRequest struct {
	CustomerID uint          `json:"customer_id" binding:"required"`
	ShopID     uint          `json:"shop_id"`
	Name       string        `json:"name" binding:"required"`
	Notes      *string       `json:"notes"`
	Dress      *DressRequest `json:"dress"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
