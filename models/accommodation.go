package models

import (
	"time"

	"gorm.io/datatypes"
)

// Accommodation lifecycle. "active" is the only non-terminal status; a transfer
// closes the old entry with "transferred" and opens a brand-new "active" one.
const (
	AccommodationActive      = "active"
	AccommodationMovedOut    = "moved_out"
	AccommodationTransferred = "transferred"
)

type Accommodation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StudentID uint `gorm:"index;not null" json:"student_id"`
	RoomID    uint `gorm:"index;not null" json:"room_id"`

	DateIn  datatypes.Date  `gorm:"column:date_in" json:"date_in"`
	DateOut *datatypes.Date `gorm:"column:date_out" json:"date_out,omitempty"`

	Status string `gorm:"size:32;index;not null" json:"status"`

	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Room    Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// TableName keeps the historical singular table name.
func (Accommodation) TableName() string {
	return "accommodation"
}

func (a Accommodation) IsActive() bool {
	return a.Status == AccommodationActive
}
