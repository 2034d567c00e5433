package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dorm-backend/models"
	"dorm-backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Amounts within one cent of each other are considered settled.
const paymentEpsilon = 0.01

var (
	ErrPaymentNotFound     = errors.New("payment_not_found")
	ErrPeriodOverlap       = errors.New("period_overlap")
	ErrAmountMismatch      = errors.New("amount_mismatch")
	ErrPaymentAlreadyPaid  = errors.New("payment_already_paid")
	ErrBelowMinimumPayment = errors.New("below_minimum_payment")
)

// PaymentService is the billing engine: it creates rent charges for month
// ranges, rejects overlapping periods and splits a charge into a paid part and
// an unpaid remainder when a partial payment arrives. Charges are always whole
// months at the fixed rate.
type PaymentService struct {
	DB   *gorm.DB
	Rate float64
}

func NewPaymentService(db *gorm.DB, rate float64) *PaymentService {
	return &PaymentService{DB: db, Rate: rate}
}

// ChargeInput describes a charge to create. MonthTo zero means a single month.
// Amount is optional; when supplied it must match months x rate within one
// currency unit (clients send it for display, the engine recomputes it).
type ChargeInput struct {
	StudentID   uint
	MonthFrom   int
	MonthTo     int
	Year        int
	Amount      float64
	MarkAsPaid  bool
	PaymentDate *time.Time
}

// PartialPaymentResult reports how a partial payment settled a charge.
type PartialPaymentResult struct {
	Payment         models.Payment  `json:"payment"`
	Remainder       *models.Payment `json:"remainder,omitempty"`
	PaidAmount      float64         `json:"paid_amount"`
	MonthsPaid      int             `json:"months_paid"`
	MonthsRemaining int             `json:"months_remaining"`
	RemainingDebt   float64         `json:"remaining_debt"`
}

func (s *PaymentService) List(page, limit int, status, year string) ([]models.Payment, int64, error) {
	_, limit, offset := normalizePage(page, limit)

	q := s.DB.Model(&models.Payment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if year != "" {
		q = q.Where("year = ?", year)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []models.Payment
	err := q.
		Preload("Student").
		Order("year DESC, month_from DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (s *PaymentService) ListDebtors() ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.
		Preload("Student").
		Where("status = ?", models.PaymentUnpaid).
		Order("year DESC, month_from DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list debtors: %w", err)
	}
	return payments, nil
}

func (s *PaymentService) GetByID(id uint) (models.Payment, error) {
	var payment models.Payment
	if err := s.DB.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payment, fmt.Errorf("%w: payment %d", ErrPaymentNotFound, id)
		}
		return payment, fmt.Errorf("failed to load payment %d: %w", id, err)
	}
	return payment, nil
}

// CreateCharge validates the input and creates the charge in one transaction.
func (s *PaymentService) CreateCharge(in ChargeInput) (models.Payment, error) {
	if in.MonthTo == 0 {
		in.MonthTo = in.MonthFrom
	}

	if in.Amount > 0 {
		months := in.MonthTo - in.MonthFrom + 1
		expected := float64(months) * s.Rate
		if math.Abs(in.Amount-expected) > 1 {
			return models.Payment{}, fmt.Errorf("%w: %d month(s) must cost %.2f (%d x %.2f)",
				ErrAmountMismatch, months, expected, months, s.Rate)
		}
	}

	var student models.Student
	if err := s.DB.First(&student, in.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, fmt.Errorf("%w: student %d", ErrStudentNotFound, in.StudentID)
		}
		return models.Payment{}, fmt.Errorf("failed to check student %d: %w", in.StudentID, err)
	}

	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		var paymentDate *datatypes.Date
		if in.PaymentDate != nil {
			d := dateOf(*in.PaymentDate)
			paymentDate = &d
		}
		payment, txErr = s.createChargeTx(tx, in.StudentID, in.MonthFrom, in.MonthTo, in.Year, in.MarkAsPaid, paymentDate)
		return txErr
	})
	return payment, err
}

// createChargeTx runs on the caller's transaction so a move-in can create its
// first charge atomically with the occupancy mutation.
func (s *PaymentService) createChargeTx(
	tx *gorm.DB,
	studentID uint,
	monthFrom, monthTo, year int,
	markAsPaid bool,
	paymentDate *datatypes.Date,
) (models.Payment, error) {

	if monthFrom < 1 || monthFrom > 12 || monthTo < 1 || monthTo > 12 {
		return models.Payment{}, fmt.Errorf("%w: months must be between 1 and 12", ErrValidation)
	}
	if monthTo < monthFrom {
		return models.Payment{}, fmt.Errorf("%w: end month cannot be before start month", ErrValidation)
	}
	if year < 2000 || year > 2100 {
		return models.Payment{}, fmt.Errorf("%w: year %d is out of range", ErrValidation, year)
	}

	// Overlap test: [a,b] and [c,d] overlap iff a <= d and c <= b.
	var existing models.Payment
	err := tx.
		Where("student_id = ? AND year = ? AND month_from <= ? AND month_to >= ?",
			studentID, year, monthTo, monthFrom).
		First(&existing).Error
	if err == nil {
		return models.Payment{}, fmt.Errorf("%w: period overlaps existing charge for %s",
			ErrPeriodOverlap, utils.FormatMonthRange(existing.MonthFrom, existing.MonthTo, year))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Payment{}, fmt.Errorf("failed to check charge overlap: %w", err)
	}

	months := monthTo - monthFrom + 1
	payment := models.Payment{
		StudentID: studentID,
		MonthFrom: monthFrom,
		MonthTo:   monthTo,
		Year:      year,
		Amount:    float64(months) * s.Rate,
		Status:    models.PaymentUnpaid,
	}
	if markAsPaid {
		payment.Status = models.PaymentPaid
		if paymentDate != nil {
			payment.PaymentDate = paymentDate
		} else {
			d := dateOf(time.Now())
			payment.PaymentDate = &d
		}
	}

	if err := tx.Create(&payment).Error; err != nil {
		return models.Payment{}, fmt.Errorf("failed to create charge: %w", err)
	}
	return payment, nil
}

// ConfirmFullPayment marks an unpaid charge paid. Confirming twice is
// rejected rather than silently accepted.
func (s *PaymentService) ConfirmFullPayment(id uint, paymentDate time.Time) (models.Payment, error) {
	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&payment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %d", ErrPaymentNotFound, id)
			}
			return fmt.Errorf("failed to load payment %d: %w", id, err)
		}
		if payment.IsPaid() {
			return fmt.Errorf("%w: payment %d was already confirmed", ErrPaymentAlreadyPaid, id)
		}

		d := dateOf(paymentDate)
		updates := map[string]interface{}{
			"status":       models.PaymentPaid,
			"payment_date": d,
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to confirm payment %d: %w", id, err)
		}
		payment.Status = models.PaymentPaid
		payment.PaymentDate = &d
		return nil
	})
	return payment, err
}

// ApplyPartialPayment settles part of a charge. A payment within epsilon of
// the full amount behaves as a full payment. Otherwise the paid amount must
// cover at least one month; the charge is truncated to the months it settles
// and an unpaid remainder record is created for the rest, both inside one
// transaction so no reader observes a half-split charge.
func (s *PaymentService) ApplyPartialPayment(id uint, paidAmount float64, paymentDate time.Time) (PartialPaymentResult, error) {
	var result PartialPaymentResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := lockForUpdate(tx).First(&payment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %d", ErrPaymentNotFound, id)
			}
			return fmt.Errorf("failed to load payment %d: %w", id, err)
		}
		if payment.IsPaid() {
			return fmt.Errorf("%w: payment %d was already confirmed", ErrPaymentAlreadyPaid, id)
		}

		if paidAmount <= 0 || paidAmount > payment.Amount {
			return fmt.Errorf("%w: amount must be between 0.01 and %.2f", ErrValidation, payment.Amount)
		}

		d := dateOf(paymentDate)
		remaining := payment.Amount - paidAmount

		if remaining < paymentEpsilon {
			updates := map[string]interface{}{
				"status":       models.PaymentPaid,
				"payment_date": d,
			}
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to confirm payment %d: %w", id, err)
			}
			payment.Status = models.PaymentPaid
			payment.PaymentDate = &d
			result = PartialPaymentResult{
				Payment:    payment,
				PaidAmount: payment.Amount,
				MonthsPaid: payment.Months(),
			}
			return nil
		}

		monthsPaid := int(math.Floor(paidAmount / s.Rate))
		if monthsPaid == 0 {
			return fmt.Errorf("%w: minimum payment is %.2f (one month)", ErrBelowMinimumPayment, s.Rate)
		}

		totalMonths := payment.Months()
		oldMonthTo := payment.MonthTo
		newMonthTo := payment.MonthFrom + monthsPaid - 1

		updates := map[string]interface{}{
			"month_to":     newMonthTo,
			"amount":       paidAmount,
			"payment_date": d,
			"status":       models.PaymentPaid,
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to split payment %d: %w", id, err)
		}
		payment.MonthTo = newMonthTo
		payment.Amount = paidAmount
		payment.PaymentDate = &d
		payment.Status = models.PaymentPaid

		remainder := models.Payment{
			StudentID: payment.StudentID,
			MonthFrom: newMonthTo + 1,
			MonthTo:   oldMonthTo,
			Year:      payment.Year,
			Amount:    remaining,
			Status:    models.PaymentUnpaid,
		}
		if err := tx.Create(&remainder).Error; err != nil {
			return fmt.Errorf("failed to create remainder charge: %w", err)
		}

		result = PartialPaymentResult{
			Payment:         payment,
			Remainder:       &remainder,
			PaidAmount:      paidAmount,
			MonthsPaid:      monthsPaid,
			MonthsRemaining: totalMonths - monthsPaid,
			RemainingDebt:   remaining,
		}
		return nil
	})

	return result, err
}

// Update is the admin patch for payment_date and status.
func (s *PaymentService) Update(id uint, paymentDate *time.Time, status string) (models.Payment, error) {
	if status != models.PaymentPaid && status != models.PaymentUnpaid {
		return models.Payment{}, fmt.Errorf("%w: status must be paid or unpaid", ErrValidation)
	}

	payment, err := s.GetByID(id)
	if err != nil {
		return payment, err
	}

	updates := map[string]interface{}{"status": status}
	if paymentDate != nil {
		d := dateOf(*paymentDate)
		updates["payment_date"] = d
		payment.PaymentDate = &d
	} else {
		updates["payment_date"] = nil
		payment.PaymentDate = nil
	}
	if err := s.DB.Model(&payment).Updates(updates).Error; err != nil {
		return payment, fmt.Errorf("failed to update payment %d: %w", id, err)
	}
	payment.Status = status
	return payment, nil
}

// Delete removes a charge unconditionally (admin override).
func (s *PaymentService) Delete(id uint) error {
	payment, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(&payment).Error; err != nil {
		return fmt.Errorf("failed to delete payment %d: %w", id, err)
	}
	return nil
}
