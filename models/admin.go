package models

import (
	"gorm.io/gorm"
)

type Admin struct {
	gorm.Model

	FullName string `json:"fullName"`
	Username string `gorm:"uniqueIndex;size:100" json:"username"`
	Password string `json:"-"`
}
