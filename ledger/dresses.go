package ledger

import (
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/tailorbook/tailorbook-api/models"
)

// DressInput is a dress together with everything recorded for it in the same request
type DressInput struct {
	CategoryID   *uint
	Type         models.DressType
	Quantity     int
	Price        int64
	DeliveryDate *time.Time
	TrialDate    *time.Time
	Notes        *string
	Measurement  *MeasurementInput
	Images       []ImageInput
	Clothes      []ClothInput
	Expenses     []ExpenseInput
	Recording    *RecordingInput
}

func (in DressInput) validate(op string) error {
	if !in.Type.Valid() {
		return validationError(op, "dress type must be %q or %q", models.DressTypeStitching, models.DressTypeAlteration)
	}
	if in.Quantity < 1 {
		return validationError(op, "quantity must be at least 1")
	}
	if in.Price < 0 {
		return validationError(op, "price must not be negative")
	}
	return validateDates(op, in.TrialDate, in.DeliveryDate)
}

func validateDates(op string, trial, delivery *time.Time) error {
	if trial != nil && delivery != nil && trial.After(*delivery) {
		return validationError(op, "trial date must not be after delivery date")
	}
	return nil
}

// AddDress inserts a dress and its bundled measurement, images, clothes, expenses and
// recording. Either all of them are stored or, on any failure, none.
func (t *OrderTx) AddDress(in DressInput) (*models.Dress, error) {
	const op = "ledger.AddDress"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	if err := in.validate(op); err != nil {
		return nil, err
	}

	dress := &models.Dress{
		OrderID:      t.order.ID,
		TailorID:     t.tailorID,
		ShopID:       t.order.ShopID,
		CategoryID:   in.CategoryID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		Price:        in.Price,
		DeliveryDate: in.DeliveryDate,
		TrialDate:    in.TrialDate,
		Status:       models.DressStatusPending,
		Notes:        in.Notes,
	}
	if err := t.tx.Omit(clause.Associations).Create(dress).Error; err != nil {
		return nil, MapError(op, err)
	}
	t.markDirty()

	if in.Measurement != nil {
		m, err := t.addMeasurement(op, dress, *in.Measurement)
		if err != nil {
			return nil, err
		}
		dress.Measurements = append(dress.Measurements, *m)
	}

	for _, img := range in.Images {
		image, err := t.addImage(op, dress, img)
		if err != nil {
			return nil, err
		}
		dress.Images = append(dress.Images, *image)
	}

	for _, c := range in.Clothes {
		if c.ImageIndex != nil {
			idx := *c.ImageIndex
			if idx < 0 || idx >= len(dress.Images) {
				return nil, validationError(op, "cloth %q refers to image %d, but the dress has %d", c.Title, idx, len(dress.Images))
			}
			c.DressImageID = &dress.Images[idx].ID
		}
		cloth, err := t.addCloth(op, dress, c)
		if err != nil {
			return nil, err
		}
		dress.Clothes = append(dress.Clothes, *cloth)
	}

	for _, e := range in.Expenses {
		e.DressID = &dress.ID
		if _, err := t.addExpense(op, e); err != nil {
			return nil, err
		}
	}

	if in.Recording != nil {
		rec, err := t.addRecording(op, dress, *in.Recording)
		if err != nil {
			return nil, err
		}
		dress.Recordings = append(dress.Recordings, *rec)
	}

	return dress, nil
}

// DressUpdate changes selected dress fields; nil fields are left alone
type DressUpdate struct {
	CategoryID   *uint
	Type         *models.DressType
	Quantity     *int
	Price        *int64
	DeliveryDate *time.Time
	TrialDate    *time.Time
	Status       *models.DressStatus
	Notes        *string
}

// UpdateDressDetails edits a dress. Price, quantity or status changes mark the order for recalculation.
func (t *OrderTx) UpdateDressDetails(dressID uint, in DressUpdate) (*models.Dress, error) {
	const op = "ledger.UpdateDressDetails"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	dress, err := findOwned[models.Dress](t, op, dressID, ErrDressNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	financial := false
	if in.CategoryID != nil {
		updates["category_id"] = *in.CategoryID
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, validationError(op, "dress type must be %q or %q", models.DressTypeStitching, models.DressTypeAlteration)
		}
		updates["type"] = *in.Type
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, validationError(op, "quantity must be at least 1")
		}
		updates["quantity"] = *in.Quantity
		financial = financial || *in.Quantity != dress.Quantity
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, validationError(op, "price must not be negative")
		}
		updates["price"] = *in.Price
		financial = financial || *in.Price != dress.Price
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, validationError(op, "unknown dress status %q", *in.Status)
		}
		updates["status"] = *in.Status
		financial = financial || *in.Status != dress.Status
	}
	if in.Notes != nil {
		updates["notes"] = strings.TrimSpace(*in.Notes)
	}

	trial, delivery := dress.TrialDate, dress.DeliveryDate
	if in.TrialDate != nil {
		trial = in.TrialDate
		updates["trial_date"] = *in.TrialDate
	}
	if in.DeliveryDate != nil {
		delivery = in.DeliveryDate
		updates["delivery_date"] = *in.DeliveryDate
	}
	if err := validateDates(op, trial, delivery); err != nil {
		return nil, err
	}

	if len(updates) == 0 {
		return dress, nil
	}
	if err := t.tx.Model(dress).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return nil, MapError(op, err)
	}
	if financial {
		t.markDirty()
	}
	return findOwned[models.Dress](t, op, dressID, ErrDressNotFound)
}

// DeleteDress removes a dress with its measurements, clothes, images, recordings and the
// expenses attached to it. Storage keys of removed attachments are released after commit.
func (t *OrderTx) DeleteDress(dressID uint) error {
	const op = "ledger.DeleteDress"
	if err := t.requireMutable(op); err != nil {
		return err
	}
	dress, err := findOwned[models.Dress](t, op, dressID, ErrDressNotFound)
	if err != nil {
		return err
	}

	var keys []string
	for _, model := range []interface{}{&models.DressImage{}, &models.Recording{}} {
		var k []string
		if err := t.tx.Model(model).Where("dress_id = ?", dress.ID).Pluck("storage_key", &k).Error; err != nil {
			return MapError(op, err)
		}
		keys = append(keys, k...)
	}

	clothIDs := t.tx.Model(&models.Cloth{}).Select("id").Where("dress_id = ?", dress.ID)
	if err := t.tx.Where("dress_id = ? OR cloth_id IN (?)", dress.ID, clothIDs).Delete(&models.Expense{}).Error; err != nil {
		return MapError(op, err)
	}
	for _, model := range []interface{}{&models.Cloth{}, &models.Measurement{}, &models.DressImage{}, &models.Recording{}} {
		if err := t.tx.Where("dress_id = ?", dress.ID).Delete(model).Error; err != nil {
			return MapError(op, err)
		}
	}
	if err := t.tx.Delete(dress).Error; err != nil {
		return MapError(op, err)
	}

	t.release(keys...)
	t.markDirty()
	return nil
}
