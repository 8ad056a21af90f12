package ledger

import (
	"strings"

	"gorm.io/gorm/clause"

	"github.com/tailorbook/tailorbook-api/models"
)

// ClothInput describes fabric for a dress. Only tailor-provided cloth may carry a price,
// and a priced cloth is billed through exactly one generated expense.
type ClothInput struct {
	Title        string
	Length       float64
	Unit         string
	ProvidedBy   string
	Price        *int64
	DressImageID *uint
	ImageIndex   *int // index into DressInput.Images when the image is created in the same request
}

func validateCloth(op string, c *models.Cloth) error {
	if c.Title == "" {
		return validationError(op, "cloth title is required")
	}
	if c.ProvidedBy == "" {
		return validationError(op, "cloth provided_by is required")
	}
	if c.Length < 0 {
		return validationError(op, "cloth length must not be negative")
	}
	if c.Price != nil {
		if c.ProvidedBy != models.ProvidedByTailor {
			return validationError(op, "only cloth provided by the tailor can have a price")
		}
		if *c.Price < 0 {
			return validationError(op, "cloth price must not be negative")
		}
	}
	return nil
}

func clothExpenseTitle(c *models.Cloth) string {
	return "Cloth: " + c.Title
}

// AddCloth records cloth for a dress of this order
func (t *OrderTx) AddCloth(dressID uint, in ClothInput) (*models.Cloth, error) {
	const op = "ledger.AddCloth"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	dress, err := findOwned[models.Dress](t, op, dressID, ErrDressNotFound)
	if err != nil {
		return nil, err
	}
	return t.addCloth(op, dress, in)
}

func (t *OrderTx) addCloth(op string, dress *models.Dress, in ClothInput) (*models.Cloth, error) {
	cloth := &models.Cloth{
		OrderID:      t.order.ID,
		DressID:      dress.ID,
		TailorID:     t.tailorID,
		DressImageID: in.DressImageID,
		Title:        strings.TrimSpace(in.Title),
		Length:       in.Length,
		Unit:         strings.TrimSpace(in.Unit),
		ProvidedBy:   strings.TrimSpace(in.ProvidedBy),
		Price:        in.Price,
	}
	if err := validateCloth(op, cloth); err != nil {
		return nil, err
	}
	if err := t.checkClothImage(op, dress.ID, cloth.DressImageID); err != nil {
		return nil, err
	}
	if err := t.tx.Omit(clause.Associations).Create(cloth).Error; err != nil {
		return nil, MapError(op, err)
	}

	if cloth.IsBillable() {
		expense, err := t.createClothExpense(op, cloth)
		if err != nil {
			return nil, err
		}
		cloth.Expense = expense
	}
	return cloth, nil
}

func (t *OrderTx) checkClothImage(op string, dressID uint, imageID *uint) error {
	if imageID == nil {
		return nil
	}
	image, err := findOwned[models.DressImage](t, op, *imageID, ErrAttachmentNotFound)
	if err != nil {
		return err
	}
	if image.DressID != dressID {
		return validationError(op, "image %d belongs to another dress", image.ID)
	}
	return nil
}

func (t *OrderTx) createClothExpense(op string, cloth *models.Cloth) (*models.Expense, error) {
	dressID := cloth.DressID
	clothID := cloth.ID
	expense := &models.Expense{
		OrderID:  t.order.ID,
		DressID:  &dressID,
		ClothID:  &clothID,
		TailorID: t.tailorID,
		Title:    clothExpenseTitle(cloth),
		Amount:   *cloth.Price,
	}
	if err := t.tx.Create(expense).Error; err != nil {
		return nil, MapError(op, err)
	}
	t.markDirty()
	return expense, nil
}

// ClothUpdate changes selected cloth fields; ClearPrice removes the price
type ClothUpdate struct {
	Title      *string
	Length     *float64
	Unit       *string
	ProvidedBy *string
	Price      *int64
	ClearPrice bool
}

// UpdateCloth edits a cloth and keeps its generated expense in step: created when the
// cloth becomes billable, updated when the price or title changes, removed otherwise.
func (t *OrderTx) UpdateCloth(clothID uint, in ClothUpdate) (*models.Cloth, error) {
	const op = "ledger.UpdateCloth"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	cloth, err := findOwned[models.Cloth](t, op, clothID, ErrClothNotFound)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		cloth.Title = strings.TrimSpace(*in.Title)
	}
	if in.Length != nil {
		cloth.Length = *in.Length
	}
	if in.Unit != nil {
		cloth.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.ProvidedBy != nil {
		cloth.ProvidedBy = strings.TrimSpace(*in.ProvidedBy)
	}
	switch {
	case in.ClearPrice:
		cloth.Price = nil
	case in.Price != nil:
		price := *in.Price
		cloth.Price = &price
	}
	if err := validateCloth(op, cloth); err != nil {
		return nil, err
	}

	err = t.tx.Model(cloth).
		Select("title", "length", "unit", "provided_by", "price").
		Updates(cloth).Error
	if err != nil {
		return nil, MapError(op, err)
	}

	var existing models.Expense
	res := t.tx.Where("cloth_id = ?", cloth.ID).Limit(1).Find(&existing)
	if res.Error != nil {
		return nil, MapError(op, res.Error)
	}
	hasExpense := res.RowsAffected > 0

	switch {
	case cloth.IsBillable() && hasExpense:
		err := t.tx.Model(&existing).Updates(map[string]interface{}{
			"amount": *cloth.Price,
			"title":  clothExpenseTitle(cloth),
		}).Error
		if err != nil {
			return nil, MapError(op, err)
		}
		existing.Amount = *cloth.Price
		existing.Title = clothExpenseTitle(cloth)
		cloth.Expense = &existing
		t.markDirty()
	case cloth.IsBillable():
		expense, err := t.createClothExpense(op, cloth)
		if err != nil {
			return nil, err
		}
		cloth.Expense = expense
	case hasExpense:
		if err := t.tx.Delete(&existing).Error; err != nil {
			return nil, MapError(op, err)
		}
		t.markDirty()
	}
	return cloth, nil
}

// DeleteCloth removes a cloth and its generated expense
func (t *OrderTx) DeleteCloth(clothID uint) error {
	const op = "ledger.DeleteCloth"
	if err := t.requireMutable(op); err != nil {
		return err
	}
	cloth, err := findOwned[models.Cloth](t, op, clothID, ErrClothNotFound)
	if err != nil {
		return err
	}

	res := t.tx.Where("cloth_id = ?", cloth.ID).Delete(&models.Expense{})
	if res.Error != nil {
		return MapError(op, res.Error)
	}
	if err := t.tx.Delete(cloth).Error; err != nil {
		return MapError(op, err)
	}
	if res.RowsAffected > 0 {
		t.markDirty()
	}
	return nil
}
