package models

import (
	"time"
)

type Student struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Surname    string `gorm:"size:100;not null" json:"surname"`
	Name       string `gorm:"size:100;not null" json:"name"`
	Patronymic string `gorm:"size:100" json:"patronymic,omitempty"`
	Course     int    `gorm:"not null" json:"course"`
	Faculty    string `gorm:"size:150;not null" json:"faculty"`
	Phone      string `gorm:"size:32" json:"phone,omitempty"`

	// Unique when set; enforced in the service so empty passports don't collide.
	Passport string `gorm:"size:32;index" json:"passport,omitempty"`
}

// FullName joins surname, name and patronymic the way list endpoints report it.
func (s Student) FullName() string {
	full := s.Surname + " " + s.Name
	if s.Patronymic != "" {
		full += " " + s.Patronymic
	}
	return full
}
