package ledger

import (
	"sort"
	"strings"

	"gorm.io/datatypes"

	"github.com/tailorbook/tailorbook-api/models"
)

// MeasurementInput maps measurement questions to the customer's answers
type MeasurementInput struct {
	Values map[string]string
	Notes  *string
}

// AddMeasurement records measurements for a dress. Blank questions or answers are rejected.
func (t *OrderTx) AddMeasurement(dressID uint, in MeasurementInput) (*models.Measurement, error) {
	const op = "ledger.AddMeasurement"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	dress, err := findOwned[models.Dress](t, op, dressID, ErrDressNotFound)
	if err != nil {
		return nil, err
	}
	return t.addMeasurement(op, dress, in)
}

func (t *OrderTx) addMeasurement(op string, dress *models.Dress, in MeasurementInput) (*models.Measurement, error) {
	if len(in.Values) == 0 {
		return nil, validationError(op, "measurement needs at least one answer")
	}

	questions := make([]string, 0, len(in.Values))
	for q := range in.Values {
		questions = append(questions, q)
	}
	sort.Strings(questions)

	values := datatypes.JSONMap{}
	for _, q := range questions {
		question := strings.TrimSpace(q)
		if question == "" {
			return nil, validationError(op, "measurement question must not be blank")
		}
		answer := strings.TrimSpace(in.Values[q])
		if answer == "" {
			return nil, validationError(op, "answer for %q must not be blank", question)
		}
		values[question] = answer
	}

	measurement := &models.Measurement{
		OrderID:  t.order.ID,
		DressID:  dress.ID,
		TailorID: t.tailorID,
		Values:   values,
		Notes:    in.Notes,
	}
	if err := t.tx.Create(measurement).Error; err != nil {
		return nil, MapError(op, err)
	}
	return measurement, nil
}

// ImageInput references an image already stored by the file service
type ImageInput struct {
	Kind       models.ImageKind
	StorageKey string
}

// AddImage attaches a stored image to a dress
func (t *OrderTx) AddImage(dressID uint, in ImageInput) (*models.DressImage, error) {
	const op = "ledger.AddImage"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	dress, err := findOwned[models.Dress](t, op, dressID, ErrDressNotFound)
	if err != nil {
		return nil, err
	}
	return t.addImage(op, dress, in)
}

func (t *OrderTx) addImage(op string, dress *models.Dress, in ImageInput) (*models.DressImage, error) {
	kind := in.Kind
	if kind == "" {
		kind = models.ImageKindDesign
	}
	if !kind.Valid() {
		return nil, validationError(op, "unknown image kind %q", in.Kind)
	}
	key := strings.TrimSpace(in.StorageKey)
	if key == "" {
		return nil, validationError(op, "image storage key is required")
	}

	image := &models.DressImage{
		OrderID:    t.order.ID,
		DressID:    dress.ID,
		Kind:       kind,
		StorageKey: key,
	}
	if err := t.tx.Create(image).Error; err != nil {
		return nil, MapError(op, err)
	}
	return image, nil
}

// DeleteImage removes an image and unlinks any cloth that pointed at it
func (t *OrderTx) DeleteImage(imageID uint) error {
	const op = "ledger.DeleteImage"
	if err := t.requireMutable(op); err != nil {
		return err
	}
	image, err := findOwned[models.DressImage](t, op, imageID, ErrAttachmentNotFound)
	if err != nil {
		return err
	}

	err = t.tx.Model(&models.Cloth{}).
		Where("dress_image_id = ?", image.ID).
		Update("dress_image_id", nil).Error
	if err != nil {
		return MapError(op, err)
	}
	if err := t.tx.Delete(image).Error; err != nil {
		return MapError(op, err)
	}
	t.release(image.StorageKey)
	return nil
}

// RecordingInput references a voice note already stored by the file service
type RecordingInput struct {
	StorageKey  string
	DurationSec int
}

// AddRecording attaches a voice note to a dress
func (t *OrderTx) AddRecording(dressID uint, in RecordingInput) (*models.Recording, error) {
	const op = "ledger.AddRecording"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	dress, err := findOwned[models.Dress](t, op, dressID, ErrDressNotFound)
	if err != nil {
		return nil, err
	}
	return t.addRecording(op, dress, in)
}

func (t *OrderTx) addRecording(op string, dress *models.Dress, in RecordingInput) (*models.Recording, error) {
	key := strings.TrimSpace(in.StorageKey)
	if key == "" {
		return nil, validationError(op, "recording storage key is required")
	}
	if in.DurationSec < 0 {
		return nil, validationError(op, "recording duration must not be negative")
	}

	recording := &models.Recording{
		OrderID:     t.order.ID,
		DressID:     dress.ID,
		StorageKey:  key,
		DurationSec: in.DurationSec,
	}
	if err := t.tx.Create(recording).Error; err != nil {
		return nil, MapError(op, err)
	}
	return recording, nil
}

// DeleteRecording removes a voice note
func (t *OrderTx) DeleteRecording(recordingID uint) error {
	const op = "ledger.DeleteRecording"
	if err := t.requireMutable(op); err != nil {
		return err
	}
	recording, err := findOwned[models.Recording](t, op, recordingID, ErrAttachmentNotFound)
	if err != nil {
		return err
	}
	if err := t.tx.Delete(recording).Error; err != nil {
		return MapError(op, err)
	}
	t.release(recording.StorageKey)
	return nil
}
