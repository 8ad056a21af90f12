package ledger

import (
	"context"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailorbook/tailorbook-api/models"
)

func (s *LedgerSuite) addDress(orderID uint, in DressInput) *models.Dress {
	t := s.T()
	var dress *models.Dress
	require.NoError(t, s.f.mutate(t, orderID, func(tx *OrderTx) error {
		var err error
		dress, err = tx.AddDress(in)
		return err
	}))
	return dress
}

func (s *LedgerSuite) TestTailorClothGeneratesOneExpense() {
	t := s.T()
	order := s.f.newOrder(t)
	dress := s.addDress(order.ID, DressInput{Type: models.DressTypeStitching, Quantity: 1, Price: 999})

	var cloth *models.Cloth
	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		var err error
		cloth, err = tx.AddCloth(dress.ID, ClothInput{Title: "Velvet", ProvidedBy: models.ProvidedByTailor, Price: int64Ptr(100)})
		return err
	}))
	require.NotNil(t, cloth.Expense)
	assert.Equal(t, int64(100), cloth.Expense.Amount)

	var expenses []models.Expense
	require.NoError(t, s.f.db.Where("cloth_id = ?", cloth.ID).Find(&expenses).Error)
	require.Len(t, expenses, 1)
	assert.Equal(t, int64(100), expenses[0].Amount)
	assert.Equal(t, dress.ID, *expenses[0].DressID)
	assert.Equal(t, int64(100), s.f.reload(t, order.ID).TotalExpenses)
}

func (s *LedgerSuite) TestCustomerClothGeneratesNoExpense() {
	t := s.T()
	order := s.f.newOrder(t)
	dress := s.addDress(order.ID, DressInput{Type: models.DressTypeAlteration, Quantity: 1, Price: 300})

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		_, err := tx.AddCloth(dress.ID, ClothInput{Title: "Own fabric", ProvidedBy: "customer"})
		return err
	}))
	assert.Zero(t, s.f.count(t, &models.Expense{}, order.ID))
	assert.Equal(t, int64(0), s.f.reload(t, order.ID).TotalExpenses)

	err := s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		_, err := tx.AddCloth(dress.ID, ClothInput{Title: "Priced own fabric", ProvidedBy: "customer", Price: int64Ptr(50)})
		return err
	})
	assert.True(t, IsCode(err, CodeValidation))
}

func (s *LedgerSuite) TestUpdateClothKeepsExpenseInStep() {
	t := s.T()
	order := s.f.newOrder(t)
	dress := s.addDress(order.ID, DressInput{Type: models.DressTypeStitching, Quantity: 1, Price: 1000})

	var cloth *models.Cloth
	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		var err error
		cloth, err = tx.AddCloth(dress.ID, ClothInput{Title: "Cotton", ProvidedBy: "customer"})
		return err
	}))

	tailor := models.ProvidedByTailor
	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		_, err := tx.UpdateCloth(cloth.ID, ClothUpdate{ProvidedBy: &tailor, Price: int64Ptr(250)})
		return err
	}))
	assert.Equal(t, int64(250), s.f.reload(t, order.ID).TotalExpenses)

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		_, err := tx.UpdateCloth(cloth.ID, ClothUpdate{Price: int64Ptr(300)})
		return err
	}))
	assert.Equal(t, int64(300), s.f.reload(t, order.ID).TotalExpenses)
	var live int64
	require.NoError(t, s.f.db.Model(&models.Expense{}).Where("cloth_id = ?", cloth.ID).Count(&live).Error)
	assert.Equal(t, int64(1), live)

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		_, err := tx.UpdateCloth(cloth.ID, ClothUpdate{ClearPrice: true})
		return err
	}))
	assert.Equal(t, int64(0), s.f.reload(t, order.ID).TotalExpenses)
}

func (s *LedgerSuite) TestDeleteClothRemovesItsExpense() {
	t := s.T()
	order := s.f.newOrder(t)
	dress := s.addDress(order.ID, DressInput{
		Type:     models.DressTypeStitching,
		Quantity: 1,
		Price:    999,
		Clothes:  []ClothInput{{Title: "Silk", ProvidedBy: models.ProvidedByTailor, Price: int64Ptr(100)}},
		Expenses: []ExpenseInput{{Title: "Piping", Amount: 40}},
	})
	assert.Equal(t, int64(140), s.f.reload(t, order.ID).TotalExpenses)

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		return tx.DeleteCloth(dress.Clothes[0].ID)
	}))
	assert.Equal(t, int64(40), s.f.reload(t, order.ID).TotalExpenses)

	err := s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		return tx.DeleteCloth(dress.Clothes[0].ID)
	})
	assert.ErrorIs(t, err, ErrClothNotFound)
}

func (s *LedgerSuite) TestDeleteDressCascades() {
	t := s.T()
	order := s.f.newOrder(t)
	dress := s.addDress(order.ID, DressInput{
		Type:        models.DressTypeStitching,
		Quantity:    2,
		Price:       700,
		Measurement: &MeasurementInput{Values: map[string]string{"Length": "42"}},
		Images:      []ImageInput{{Kind: models.ImageKindCloth, StorageKey: "dresses/cloth.jpg"}},
		Clothes:     []ClothInput{{Title: "Lawn", ProvidedBy: models.ProvidedByTailor, Price: int64Ptr(150), ImageIndex: new(int)}},
		Expenses:    []ExpenseInput{{Title: "Lace", Amount: 60}},
	})
	require.NotNil(t, dress.Clothes[0].DressImageID)
	assert.Equal(t, dress.Images[0].ID, *dress.Clothes[0].DressImageID)

	before := s.f.reload(t, order.ID)
	assert.Equal(t, models.Totals{DressAmount: 1400, Expenses: 210}, before.Totals())
	assert.Equal(t, models.OrderStatusActive, before.Status)

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		return tx.DeleteDress(dress.ID)
	}))

	after := s.f.reload(t, order.ID)
	assert.Equal(t, models.Totals{}, after.Totals())
	assert.Equal(t, models.OrderStatusCreated, after.Status)
	for _, model := range []interface{}{&models.Cloth{}, &models.Expense{}, &models.Measurement{}, &models.DressImage{}} {
		var n int64
		require.NoError(t, s.f.db.Model(model).Where("order_id = ?", order.ID).Count(&n).Error)
		assert.Zero(t, n)
	}
	assert.Contains(t, s.f.released, "dresses/cloth.jpg")
}

func (s *LedgerSuite) TestEntryDeletionsRecompute() {
	t := s.T()
	order := s.f.newOrder(t)

	var expense *models.Expense
	var discount *models.Discount
	var payment *models.Payment
	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		var err error
		if _, err = tx.AddDress(DressInput{Type: models.DressTypeStitching, Quantity: 1, Price: 1000}); err != nil {
			return err
		}
		if expense, err = tx.AddExpense(ExpenseInput{Title: "Delivery", Amount: 100}); err != nil {
			return err
		}
		if discount, err = tx.AddDiscount(DiscountInput{Title: "Friend", Amount: 100}); err != nil {
			return err
		}
		payment, err = tx.AddPayment(PaymentInput{Amount: 1000})
		return err
	}))
	assert.Equal(t, models.PaymentStatusPaid, s.f.reload(t, order.ID).PaymentStatus)

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		return tx.DeleteDiscount(discount.ID)
	}))
	got := s.f.reload(t, order.ID)
	assert.Equal(t, int64(0), got.TotalDiscount)
	assert.Equal(t, models.PaymentStatusPartial, got.PaymentStatus)

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		return tx.DeleteExpense(expense.ID)
	}))
	got = s.f.reload(t, order.ID)
	assert.Equal(t, int64(0), got.TotalExpenses)
	assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		return tx.DeletePayment(payment.ID)
	}))
	got = s.f.reload(t, order.ID)
	assert.Equal(t, int64(0), got.TotalPayment)
	assert.Equal(t, models.PaymentStatusUnpaid, got.PaymentStatus)
}

func (s *LedgerSuite) TestClothExpenseCannotBeDeletedDirectly() {
	t := s.T()
	order := s.f.newOrder(t)
	dress := s.addDress(order.ID, DressInput{
		Type:     models.DressTypeStitching,
		Quantity: 1,
		Price:    500,
		Clothes:  []ClothInput{{Title: "Linen", ProvidedBy: models.ProvidedByTailor, Price: int64Ptr(80)}},
	})

	err := s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		return tx.DeleteExpense(dress.Clothes[0].Expense.ID)
	})
	assert.True(t, IsCode(err, CodeValidation))
	assert.Equal(t, int64(80), s.f.reload(t, order.ID).TotalExpenses)
}

func (s *LedgerSuite) TestEntryValidation() {
	t := s.T()
	order := s.f.newOrder(t)
	dress := s.addDress(order.ID, DressInput{Type: models.DressTypeStitching, Quantity: 1, Price: 100})
	trial := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	delivery := trial.Add(-24 * time.Hour)

	tests := []struct {
		name string
		fn   func(*OrderTx) error
		code ErrorCode
	}{
		{"unknown dress type", func(tx *OrderTx) error {
			_, err := tx.AddDress(DressInput{Type: "embroidery", Quantity: 1})
			return err
		}, CodeValidation},
		{"zero quantity", func(tx *OrderTx) error {
			_, err := tx.AddDress(DressInput{Type: models.DressTypeStitching, Quantity: 0})
			return err
		}, CodeValidation},
		{"negative price", func(tx *OrderTx) error {
			_, err := tx.AddDress(DressInput{Type: models.DressTypeStitching, Quantity: 1, Price: -1})
			return err
		}, CodeValidation},
		{"trial after delivery", func(tx *OrderTx) error {
			_, err := tx.AddDress(DressInput{Type: models.DressTypeStitching, Quantity: 1, TrialDate: &trial, DeliveryDate: &delivery})
			return err
		}, CodeValidation},
		{"empty measurement", func(tx *OrderTx) error {
			_, err := tx.AddMeasurement(dress.ID, MeasurementInput{})
			return err
		}, CodeValidation},
		{"blank question", func(tx *OrderTx) error {
			_, err := tx.AddMeasurement(dress.ID, MeasurementInput{Values: map[string]string{" ": "40"}})
			return err
		}, CodeValidation},
		{"negative expense", func(tx *OrderTx) error {
			_, err := tx.AddExpense(ExpenseInput{Title: "Refund", Amount: -5})
			return err
		}, CodeValidation},
		{"untitled expense", func(tx *OrderTx) error {
			_, err := tx.AddExpense(ExpenseInput{Amount: 5})
			return err
		}, CodeValidation},
		{"zero discount", func(tx *OrderTx) error {
			_, err := tx.AddDiscount(DiscountInput{Title: "Nothing"})
			return err
		}, CodeValidation},
		{"zero payment", func(tx *OrderTx) error {
			_, err := tx.AddPayment(PaymentInput{Amount: 0})
			return err
		}, CodeValidation},
		{"unknown payment method", func(tx *OrderTx) error {
			_, err := tx.AddPayment(PaymentInput{Amount: 10, Method: "barter"})
			return err
		}, CodeValidation},
		{"image without key", func(tx *OrderTx) error {
			_, err := tx.AddImage(dress.ID, ImageInput{Kind: models.ImageKindDesign})
			return err
		}, CodeValidation},
		{"dress of another order", func(tx *OrderTx) error {
			_, err := tx.AddCloth(dress.ID+100, ClothInput{Title: "Silk", ProvidedBy: "customer"})
			return err
		}, CodeNotFound},
		{"missing payment", func(tx *OrderTx) error {
			return tx.DeletePayment(999)
		}, CodeNotFound},
		{"missing recording", func(tx *OrderTx) error {
			return tx.DeleteRecording(999)
		}, CodeNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.f.mutate(t, order.ID, tt.fn)
			require.Error(s.T(), err)
			assert.Equal(s.T(), tt.code, CodeOf(err), err.Error())
		})
	}

	assert.Equal(t, models.Totals{DressAmount: 100}, s.f.reload(t, order.ID).Totals())
}

func (s *LedgerSuite) TestStatusMachine() {
	t := s.T()
	order := s.f.newOrder(t)
	ctx := context.Background()

	_, err := s.f.ledger.SetOrderStatus(ctx, s.f.tailor.ID, order.ID, models.OrderStatusInProgress)
	assert.True(t, IsCode(err, CodeInvalidTransition))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.f.ledger.SetOrderStatus(ctx, s.f.tailor.ID, order.ID, "archived")
	assert.True(t, IsCode(err, CodeValidation))

	s.addDress(order.ID, DressInput{Type: models.DressTypeStitching, Quantity: 1, Price: 800})
	assert.Equal(t, models.OrderStatusActive, s.f.reload(t, order.ID).Status)

	for _, next := range []models.OrderStatus{models.OrderStatusInProgress, models.OrderStatusReady, models.OrderStatusDelivered} {
		got, err := s.f.ledger.SetOrderStatus(ctx, s.f.tailor.ID, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	var dresses []models.Dress
	require.NoError(t, s.f.db.Where("order_id = ?", order.ID).Find(&dresses).Error)
	for _, d := range dresses {
		assert.Equal(t, models.DressStatusDelivered, d.Status)
	}

	err = s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		_, err := tx.AddDress(DressInput{Type: models.DressTypeStitching, Quantity: 1, Price: 100})
		return err
	})
	assert.True(t, IsCode(err, CodeInvalidTransition))

	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		_, err := tx.AddPayment(PaymentInput{Amount: 800})
		return err
	}))
	got := s.f.reload(t, order.ID)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)
	assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)

	_, err = s.f.ledger.SetOrderStatus(ctx, s.f.tailor.ID, order.ID, models.OrderStatusCancelled)
	assert.True(t, IsCode(err, CodeInvalidTransition))
}

func (s *LedgerSuite) TestCancellationZeroesDressTotal() {
	t := s.T()
	order := s.f.newOrder(t)
	require.NoError(t, s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		if _, err := tx.AddDress(DressInput{Type: models.DressTypeStitching, Quantity: 2, Price: 1200}); err != nil {
			return err
		}
		if _, err := tx.AddExpense(ExpenseInput{Title: "Cutting done", Amount: 300}); err != nil {
			return err
		}
		_, err := tx.AddPayment(PaymentInput{Amount: 200})
		return err
	}))
	assert.Equal(t, models.PaymentStatusPartial, s.f.reload(t, order.ID).PaymentStatus)

	got, err := s.f.ledger.SetOrderStatus(context.Background(), s.f.tailor.ID, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	assert.Equal(t, models.Totals{Expenses: 300, Payment: 200}, got.Totals())
	assert.Equal(t, models.PaymentStatusPartial, got.PaymentStatus)

	err = s.f.mutate(t, order.ID, func(tx *OrderTx) error {
		_, err := tx.AddPayment(PaymentInput{Amount: 100})
		return err
	})
	assert.True(t, IsCode(err, CodeInvalidTransition))
}

func (s *LedgerSuite) TestReadsAndDelete() {
	t := s.T()
	ctx := context.Background()
	first := s.f.newOrder(t)
	second := s.f.newOrder(t)
	s.addDress(second.ID, DressInput{
		Type:        models.DressTypeStitching,
		Quantity:    1,
		Price:       650,
		Measurement: &MeasurementInput{Values: map[string]string{"Chest": "36"}},
		Clothes:     []ClothInput{{Title: "Khaddar", ProvidedBy: models.ProvidedByTailor, Price: int64Ptr(90)}},
		Recording:   &RecordingInput{StorageKey: "recordings/instructions.m4a"},
	})

	loaded, err := s.f.ledger.GetOrder(ctx, s.f.tailor.ID, second.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Customer)
	assert.Equal(t, s.f.customer.Name, loaded.Customer.Name)
	require.Len(t, loaded.Dresses, 1)
	assert.Len(t, loaded.Dresses[0].Measurements, 1)
	assert.Equal(t, "36", loaded.Dresses[0].Measurements[0].Values["Chest"])
	require.Len(t, loaded.Dresses[0].Clothes, 1)
	require.NotNil(t, loaded.Dresses[0].Clothes[0].Expense)
	assert.Equal(t, int64(90), loaded.Dresses[0].Clothes[0].Expense.Amount)
	assert.Len(t, loaded.Dresses[0].Recordings, 1)
	assert.Len(t, loaded.Expenses, 1)

	active, err := s.f.ledger.ListOrders(ctx, s.f.tailor.ID, OrderFilter{Status: models.OrderStatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	all, err := s.f.ledger.ListOrders(ctx, s.f.tailor.ID, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.f.ledger.ListOrders(ctx, s.f.tailor.ID, OrderFilter{Status: "archived"})
	assert.True(t, IsCode(err, CodeValidation))

	clothID := loaded.Dresses[0].Clothes[0].ID
	owner, err := s.f.ledger.OrderOf(ctx, s.f.tailor.ID, EntryCloth, clothID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, owner)
	_, err = s.f.ledger.OrderOf(ctx, s.f.tailor.ID+1, EntryCloth, clothID)
	assert.ErrorIs(t, err, ErrClothNotFound)

	require.NoError(t, s.f.ledger.DeleteOrder(ctx, s.f.tailor.ID, second.ID))
	_, err = s.f.ledger.GetOrder(ctx, s.f.tailor.ID, second.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Contains(t, s.f.released, "recordings/instructions.m4a")
	for _, model := range []interface{}{&models.Dress{}, &models.Cloth{}, &models.Expense{}, &models.Measurement{}, &models.Recording{}} {
		var n int64
		require.NoError(t, s.f.db.Model(model).Where("order_id = ?", second.ID).Count(&n).Error)
		assert.Zero(t, n)
	}

	_, err = s.f.ledger.OrderOf(ctx, s.f.tailor.ID, EntryCloth, clothID)
	assert.ErrorIs(t, err, ErrClothNotFound)

	remaining, err := s.f.ledger.ListOrders(ctx, s.f.tailor.ID, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, first.ID, remaining[0].ID)
}
