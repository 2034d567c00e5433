package services

import (
	"errors"
	"fmt"
	"strings"

	"dorm-backend/models"

	"gorm.io/gorm"
)

var (
	ErrRoomNotFound      = errors.New("room_not_found")
	ErrRoomNumberTaken   = errors.New("room_number_taken")
	ErrRoomFull          = errors.New("room_full")
	ErrCapacityViolation = errors.New("capacity_violation")
	ErrRoomOccupied      = errors.New("room_occupied")
)

// RoomService owns the room inventory: capacity, cached occupancy and the
// guards that keep occupied_beds within [0, total_beds].
type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

func (s *RoomService) GetByID(id uint) (models.Room, error) {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room, fmt.Errorf("%w: room %d", ErrRoomNotFound, id)
		}
		return room, fmt.Errorf("failed to load room %d: %w", id, err)
	}
	return room, nil
}

// List supports the floor filter and status=available|full.
func (s *RoomService) List(page, limit int, floor, status string) ([]models.Room, int64, error) {
	_, limit, offset := normalizePage(page, limit)

	q := s.DB.Model(&models.Room{})
	if floor != "" {
		q = q.Where("floor = ?", floor)
	}
	switch status {
	case "available":
		q = q.Where("occupied_beds < total_beds")
	case "full":
		q = q.Where("occupied_beds >= total_beds")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	var rooms []models.Room
	if err := q.Order("floor, room_number").Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, total, nil
}

func (s *RoomService) ListAvailable() ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.
		Where("occupied_beds < total_beds").
		Order("floor, room_number").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) Create(room *models.Room) error {
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.RoomNumber == "" {
		return fmt.Errorf("%w: room number is required", ErrValidation)
	}
	if room.TotalBeds < 1 {
		return fmt.Errorf("%w: total beds must be at least 1", ErrValidation)
	}
	// new rooms always start empty
	room.OccupiedBeds = 0

	var existing models.Room
	err := s.DB.Where("room_number = ?", room.RoomNumber).First(&existing).Error
	if err == nil {
		return fmt.Errorf("%w: room %s already exists", ErrRoomNumberTaken, room.RoomNumber)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check room number: %w", err)
	}

	if err := s.DB.Create(room).Error; err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// Update rejects shrinking total_beds below the current occupancy.
func (s *RoomService) Update(id uint, roomNumber string, floor, totalBeds int) (models.Room, error) {
	roomNumber = strings.TrimSpace(roomNumber)
	if roomNumber == "" {
		return models.Room{}, fmt.Errorf("%w: room number is required", ErrValidation)
	}
	if totalBeds < 1 {
		return models.Room{}, fmt.Errorf("%w: total beds must be at least 1", ErrValidation)
	}

	room, err := s.GetByID(id)
	if err != nil {
		return room, err
	}

	if totalBeds < room.OccupiedBeds {
		return room, fmt.Errorf("%w: cannot set %d beds, %d currently occupied",
			ErrCapacityViolation, totalBeds, room.OccupiedBeds)
	}

	var existing models.Room
	err = s.DB.Where("room_number = ? AND id != ?", roomNumber, id).First(&existing).Error
	if err == nil {
		return room, fmt.Errorf("%w: room %s already exists", ErrRoomNumberTaken, roomNumber)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return room, fmt.Errorf("failed to check room number: %w", err)
	}

	updates := map[string]interface{}{
		"room_number": roomNumber,
		"floor":       floor,
		"total_beds":  totalBeds,
	}
	if err := s.DB.Model(&room).Updates(updates).Error; err != nil {
		return room, fmt.Errorf("failed to update room: %w", err)
	}
	return room, nil
}

// Delete is blocked while any resident remains.
func (s *RoomService) Delete(id uint) error {
	room, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if room.OccupiedBeds > 0 {
		return fmt.Errorf("%w: room %s still has %d resident(s)",
			ErrRoomOccupied, room.RoomNumber, room.OccupiedBeds)
	}
	if err := s.DB.Delete(&room).Error; err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// incrementOccupancy applies the conditional test-and-set increment. The WHERE
// clause re-checks capacity at the moment of the write, so even if the caller's
// earlier read went stale the room can never be over-filled.
func incrementOccupancy(tx *gorm.DB, roomID uint) error {
	res := tx.Model(&models.Room{}).
		Where("id = ? AND occupied_beds < total_beds", roomID).
		Update("occupied_beds", gorm.Expr("occupied_beds + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment occupancy for room %d: %w", roomID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: room %d is at capacity", ErrRoomFull, roomID)
	}
	return nil
}

// decrementOccupancy never drives the counter below zero; hitting zero rows
// here means the counter and the ledger diverged, which must abort the
// surrounding transaction.
func decrementOccupancy(tx *gorm.DB, roomID uint) error {
	res := tx.Model(&models.Room{}).
		Where("id = ? AND occupied_beds > 0", roomID).
		Update("occupied_beds", gorm.Expr("occupied_beds - 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement occupancy for room %d: %w", roomID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("occupancy for room %d is already zero", roomID)
	}
	return nil
}
