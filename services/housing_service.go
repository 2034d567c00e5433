package services

import (
	"errors"
	"fmt"
	"time"

	"dorm-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrStudentAlreadyHoused = errors.New("student_already_housed")
	ErrNotActive            = errors.New("accommodation_not_active")
	ErrSameRoom             = errors.New("same_room")
)

// HousingService is the coordinator for the compound operations that touch
// room occupancy, the accommodation ledger and billing together. Every
// operation runs inside a single transaction; the room row is locked before
// its occupancy is read, and when two rooms are involved the lower id is
// locked first so concurrent transfers cannot deadlock.
type HousingService struct {
	DB       *gorm.DB
	Payments *PaymentService
}

func NewHousingService(db *gorm.DB, payments *PaymentService) *HousingService {
	return &HousingService{DB: db, Payments: payments}
}

// ChargeSpec is the optional first charge created together with a move-in.
type ChargeSpec struct {
	MonthFrom  int  `json:"month_from"`
	MonthTo    int  `json:"month_to"`
	Year       int  `json:"year"`
	MarkAsPaid bool `json:"mark_as_paid"`
}

// RoomStatus is the occupancy snapshot returned after a move-in.
type RoomStatus struct {
	RoomNumber    string `json:"room_number"`
	OccupiedBeds  int    `json:"occupied_beds"`
	TotalBeds     int    `json:"total_beds"`
	AvailableBeds int    `json:"available_beds"`
}

type MoveInResult struct {
	Accommodation  models.Accommodation `json:"accommodation"`
	PaymentCreated bool                 `json:"payment_created"`
	Payment        *models.Payment      `json:"payment,omitempty"`
	RoomStatus     RoomStatus           `json:"room_status"`
}

type ClearRoomResult struct {
	RoomNumber string `json:"room_number"`
	Released   int64  `json:"released"`
}

// MoveIn houses a student and optionally creates the first rent charge. The
// occupancy increment, the ledger entry and the charge are one atomic unit: a
// failure at any step (including a charge period overlap) rolls everything
// back, so a failed move-in never leaks an occupancy increment.
func (s *HousingService) MoveIn(studentID, roomID uint, dateIn time.Time, charge *ChargeSpec) (MoveInResult, error) {
	var result MoveInResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: student %d", ErrStudentNotFound, studentID)
			}
			return fmt.Errorf("failed to check student %d: %w", studentID, err)
		}

		existing, err := findActiveByStudent(tx, studentID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: student already lives in room %s",
				ErrStudentAlreadyHoused, existing.Room.RoomNumber)
		}

		// Lock the room row before reading its occupancy; the capacity check
		// and the increment must see the same state.
		var room models.Room
		if err := lockForUpdate(tx).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: room %d", ErrRoomNotFound, roomID)
			}
			return fmt.Errorf("failed to lock room %d: %w", roomID, err)
		}

		if room.IsFull() {
			return fmt.Errorf("%w: room %s has no free beds (%d of %d occupied)",
				ErrRoomFull, room.RoomNumber, room.OccupiedBeds, room.TotalBeds)
		}

		if err := incrementOccupancy(tx, roomID); err != nil {
			return err
		}

		entry := models.Accommodation{
			StudentID: studentID,
			RoomID:    roomID,
			DateIn:    dateOf(dateIn),
			Status:    models.AccommodationActive,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create accommodation entry: %w", err)
		}

		if charge != nil {
			monthTo := charge.MonthTo
			if monthTo == 0 {
				monthTo = charge.MonthFrom
			}
			var paymentDate *datatypes.Date
			if charge.MarkAsPaid {
				d := dateOf(dateIn)
				paymentDate = &d
			}
			payment, err := s.Payments.createChargeTx(tx,
				studentID, charge.MonthFrom, monthTo, charge.Year, charge.MarkAsPaid, paymentDate)
			if err != nil {
				return err
			}
			result.Payment = &payment
			result.PaymentCreated = true
		}

		// Snapshot the room after the increment, still inside the transaction.
		if err := tx.First(&room, roomID).Error; err != nil {
			return fmt.Errorf("failed to reload room %d: %w", roomID, err)
		}

		result.Accommodation = entry
		result.RoomStatus = RoomStatus{
			RoomNumber:    room.RoomNumber,
			OccupiedBeds:  room.OccupiedBeds,
			TotalBeds:     room.TotalBeds,
			AvailableBeds: room.AvailableBeds(),
		}
		return nil
	})

	return result, err
}

// Transfer closes the active entry, moves the student into the new room and
// opens a fresh active entry, adjusting both occupancy counters in the same
// transaction. Both room rows are locked, lower id first.
func (s *HousingService) Transfer(accommodationID, newRoomID uint, transferDate time.Time) (models.Accommodation, error) {
	var created models.Accommodation

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var acc models.Accommodation
		if err := tx.First(&acc, accommodationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: accommodation %d", ErrAccommodationNotFound, accommodationID)
			}
			return fmt.Errorf("failed to load accommodation %d: %w", accommodationID, err)
		}
		if !acc.IsActive() {
			return fmt.Errorf("%w: accommodation %d is %s", ErrNotActive, acc.ID, acc.Status)
		}
		if acc.RoomID == newRoomID {
			return fmt.Errorf("%w: student already lives in this room", ErrSameRoom)
		}

		lockRoom := func(id uint) (models.Room, error) {
			var room models.Room
			if err := lockForUpdate(tx).First(&room, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return room, fmt.Errorf("%w: room %d", ErrRoomNotFound, id)
				}
				return room, fmt.Errorf("failed to lock room %d: %w", id, err)
			}
			return room, nil
		}

		var oldRoom, newRoom models.Room
		var err error
		if newRoomID < acc.RoomID {
			if newRoom, err = lockRoom(newRoomID); err != nil {
				return err
			}
			if oldRoom, err = lockRoom(acc.RoomID); err != nil {
				return err
			}
		} else {
			if oldRoom, err = lockRoom(acc.RoomID); err != nil {
				return err
			}
			if newRoom, err = lockRoom(newRoomID); err != nil {
				return err
			}
		}

		if newRoom.IsFull() {
			return fmt.Errorf("%w: room %s has no free beds (%d of %d occupied)",
				ErrRoomFull, newRoom.RoomNumber, newRoom.OccupiedBeds, newRoom.TotalBeds)
		}

		d := dateOf(transferDate)
		res := tx.Model(&models.Accommodation{}).
			Where("id = ? AND status = ?", acc.ID, models.AccommodationActive).
			Updates(map[string]interface{}{
				"status":   models.AccommodationTransferred,
				"date_out": d,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close accommodation %d: %w", acc.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: accommodation %d", ErrNotActive, acc.ID)
		}

		if err := decrementOccupancy(tx, oldRoom.ID); err != nil {
			return err
		}
		if err := incrementOccupancy(tx, newRoom.ID); err != nil {
			return err
		}

		created = models.Accommodation{
			StudentID: acc.StudentID,
			RoomID:    newRoomID,
			DateIn:    d,
			Status:    models.AccommodationActive,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create accommodation entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return created, err
	}

	if err := s.DB.Preload("Student").Preload("Room").First(&created, created.ID).Error; err != nil {
		return created, fmt.Errorf("failed to reload accommodation %d: %w", created.ID, err)
	}
	return created, nil
}

// Checkout closes an active entry and releases its bed as one atomic pair.
func (s *HousingService) Checkout(accommodationID uint, dateOut time.Time) (models.Accommodation, error) {
	var acc models.Accommodation

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&acc, accommodationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: accommodation %d", ErrAccommodationNotFound, accommodationID)
			}
			return fmt.Errorf("failed to load accommodation %d: %w", accommodationID, err)
		}
		if !acc.IsActive() {
			return fmt.Errorf("%w: student was already moved out", ErrNotActive)
		}

		var room models.Room
		if err := lockForUpdate(tx).First(&room, acc.RoomID).Error; err != nil {
			return fmt.Errorf("failed to lock room %d: %w", acc.RoomID, err)
		}

		d := dateOf(dateOut)
		res := tx.Model(&models.Accommodation{}).
			Where("id = ? AND status = ?", acc.ID, models.AccommodationActive).
			Updates(map[string]interface{}{
				"status":   models.AccommodationMovedOut,
				"date_out": d,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close accommodation %d: %w", acc.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: student was already moved out", ErrNotActive)
		}

		if err := decrementOccupancy(tx, acc.RoomID); err != nil {
			return err
		}

		acc.Status = models.AccommodationMovedOut
		acc.DateOut = &d
		return nil
	})

	return acc, err
}

// ClearRoom closes every active entry in a room and resets its occupancy to
// zero in one unit (administrative end-of-year reset).
func (s *HousingService) ClearRoom(roomID uint) (ClearRoomResult, error) {
	var result ClearRoomResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := lockForUpdate(tx).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: room %d", ErrRoomNotFound, roomID)
			}
			return fmt.Errorf("failed to lock room %d: %w", roomID, err)
		}

		d := dateOf(time.Now())
		res := tx.Model(&models.Accommodation{}).
			Where("room_id = ? AND status = ?", roomID, models.AccommodationActive).
			Updates(map[string]interface{}{
				"status":   models.AccommodationMovedOut,
				"date_out": d,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close accommodation entries for room %d: %w", roomID, res.Error)
		}

		if err := tx.Model(&room).Update("occupied_beds", 0).Error; err != nil {
			return fmt.Errorf("failed to reset occupancy for room %d: %w", roomID, err)
		}

		result = ClearRoomResult{RoomNumber: room.RoomNumber, Released: res.RowsAffected}
		return nil
	})

	return result, err
}
