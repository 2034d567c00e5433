package services

import (
	"errors"
	"fmt"

	"dorm-backend/models"

	"gorm.io/gorm"
)

var ErrAccommodationNotFound = errors.New("accommodation_not_found")

// AccommodationService reads the assignment ledger. Entries are only ever
// created and closed by HousingService inside its transactions; they are
// never deleted.
type AccommodationService struct {
	DB *gorm.DB
}

func NewAccommodationService(db *gorm.DB) *AccommodationService {
	return &AccommodationService{DB: db}
}

func (s *AccommodationService) List(page, limit int, status string) ([]models.Accommodation, int64, error) {
	_, limit, offset := normalizePage(page, limit)

	q := s.DB.Model(&models.Accommodation{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count accommodation entries: %w", err)
	}

	var entries []models.Accommodation
	err := q.
		Preload("Student").
		Preload("Room").
		Order("date_in DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accommodation entries: %w", err)
	}
	return entries, total, nil
}

// FindActiveByRoom lists the current residents of a room.
func (s *AccommodationService) FindActiveByRoom(roomID uint) ([]models.Accommodation, error) {
	var entries []models.Accommodation
	err := s.DB.
		Preload("Student").
		Where("room_id = ? AND status = ?", roomID, models.AccommodationActive).
		Order("date_in").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list residents of room %d: %w", roomID, err)
	}
	return entries, nil
}

// findActiveByStudent returns the student's active entry with its room
// preloaded, or nil when the student is not housed. Runs on the caller's
// transaction handle so coordinator operations see their own writes.
func findActiveByStudent(tx *gorm.DB, studentID uint) (*models.Accommodation, error) {
	var acc models.Accommodation
	err := tx.
		Preload("Room").
		Where("student_id = ? AND status = ?", studentID, models.AccommodationActive).
		First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check active accommodation for student %d: %w", studentID, err)
	}
	return &acc, nil
}
