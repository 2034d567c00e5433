package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Payment is a rent charge covering a contiguous span of months within one year.
// Amount is always months x monthly rate at creation; a partial payment truncates
// the record to the months it settles and spawns an unpaid remainder record.
type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`

	StudentID uint `gorm:"index;not null" json:"student_id"`

	MonthFrom int `gorm:"column:month_from;not null" json:"month_from"`
	MonthTo   int `gorm:"column:month_to;not null" json:"month_to"`
	Year      int `gorm:"index;not null" json:"year"`

	Amount      float64         `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate *datatypes.Date `gorm:"column:payment_date" json:"payment_date,omitempty"`
	Status      string          `gorm:"size:16;index;not null;default:unpaid" json:"status"`

	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (p Payment) Months() int {
	return p.MonthTo - p.MonthFrom + 1
}

func (p Payment) IsPaid() bool {
	return p.Status == PaymentPaid
}
