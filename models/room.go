package models

import (
	"time"
)

type Room struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RoomNumber string `gorm:"column:room_number;uniqueIndex;size:50;not null" json:"room_number"`
	Floor      int    `gorm:"not null" json:"floor"`
	TotalBeds  int    `gorm:"column:total_beds;not null" json:"total_beds"`

	// Cached occupancy counter, kept in lockstep with the accommodation ledger.
	OccupiedBeds int `gorm:"column:occupied_beds;not null;default:0;check:beds_check,occupied_beds >= 0 AND occupied_beds <= total_beds" json:"occupied_beds"`
}

func (r Room) AvailableBeds() int {
	return r.TotalBeds - r.OccupiedBeds
}

func (r Room) IsFull() bool {
	return r.OccupiedBeds >= r.TotalBeds
}
