package services

import (
	"errors"
	"fmt"
	"strings"

	"dorm-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrStudentNotFound = errors.New("student_not_found")
	ErrStudentHoused   = errors.New("student_housed")
	ErrPassportTaken   = errors.New("passport_taken")
	ErrInvalidSort     = errors.New("invalid_sort_field")
)

type StudentService struct {
	DB *gorm.DB
}

func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{DB: db}
}

// StudentListOptions are the list filters; SortBy is checked against a
// whitelist because it is interpolated into the ORDER BY clause.
type StudentListOptions struct {
	Page      int
	Limit     int
	Search    string
	Course    string
	Faculty   string
	SortBy    string
	SortOrder string
}

// StudentRow is a student annotated with housing and debt information.
type StudentRow struct {
	models.Student
	RoomNumber     *string `json:"room_number"`
	Floor          *int    `json:"floor"`
	TotalDebt      float64 `json:"total_debt"`
	IsAccommodated bool    `json:"is_accommodated"`
}

// StudentDetail adds the move-in date and unpaid month count to a row.
type StudentDetail struct {
	StudentRow
	AccommodationDate *datatypes.Date `json:"accommodation_date,omitempty"`
	UnpaidMonths      int64           `json:"unpaid_months"`
}

type Roommate struct {
	ID          uint           `json:"id"`
	Surname     string         `json:"-"`
	Name        string         `json:"-"`
	StudentName string         `gorm:"-" json:"student_name"`
	Faculty     string         `json:"faculty"`
	Course      int            `json:"course"`
	Phone       string         `json:"phone"`
	DateIn      datatypes.Date `json:"date_in"`
}

var studentSortFields = map[string]bool{
	"id":       true,
	"surname":  true,
	"name":     true,
	"course":   true,
	"faculty":  true,
	"phone":    true,
	"passport": true,
}

func (s *StudentService) applyFilters(q *gorm.DB, opts StudentListOptions) *gorm.DB {
	if opts.Search != "" {
		needle := "%" + strings.ToLower(opts.Search) + "%"
		q = q.Where("LOWER(students.surname) LIKE ? OR LOWER(students.name) LIKE ?", needle, needle)
	}
	if opts.Course != "" {
		q = q.Where("students.course = ?", opts.Course)
	}
	if opts.Faculty != "" {
		q = q.Where("students.faculty = ?", opts.Faculty)
	}
	return q
}

// annotated selects students joined with their active room and unpaid debt.
func (s *StudentService) annotated() *gorm.DB {
	return s.DB.Table("students").
		Select(`students.*, r.room_number AS room_number, r.floor AS floor,
			COALESCE(debt.total_debt, 0) AS total_debt,
			CASE WHEN a.id IS NOT NULL THEN 1 ELSE 0 END AS is_accommodated`).
		Joins("LEFT JOIN accommodation a ON students.id = a.student_id AND a.status = ?", models.AccommodationActive).
		Joins("LEFT JOIN rooms r ON a.room_id = r.id").
		Joins("LEFT JOIN (SELECT student_id, SUM(amount) AS total_debt FROM payments WHERE status = ? GROUP BY student_id) debt ON students.id = debt.student_id", models.PaymentUnpaid)
}

func (s *StudentService) List(opts StudentListOptions) ([]StudentRow, int64, error) {
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "id"
	}
	if !studentSortFields[sortBy] {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidSort, sortBy)
	}
	direction := "ASC"
	if strings.EqualFold(opts.SortOrder, "desc") {
		direction = "DESC"
	}

	_, limit, offset := normalizePage(opts.Page, opts.Limit)

	var total int64
	countQ := s.applyFilters(s.DB.Model(&models.Student{}), opts)
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	var rows []StudentRow
	q := s.applyFilters(s.annotated(), opts).
		Order(fmt.Sprintf("students.%s %s", sortBy, direction)).
		Offset(offset).
		Limit(limit)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	return rows, total, nil
}

// ListUnhoused lists students without an active accommodation entry.
func (s *StudentService) ListUnhoused() ([]models.Student, error) {
	var students []models.Student
	err := s.DB.Table("students").
		Select("students.*").
		Joins("LEFT JOIN accommodation a ON students.id = a.student_id AND a.status = ?", models.AccommodationActive).
		Where("a.id IS NULL").
		Order("students.surname, students.name").
		Scan(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unhoused students: %w", err)
	}
	return students, nil
}

func (s *StudentService) Get(id uint) (StudentDetail, error) {
	var detail StudentDetail

	var student models.Student
	if err := s.DB.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail, fmt.Errorf("%w: student %d", ErrStudentNotFound, id)
		}
		return detail, fmt.Errorf("failed to load student %d: %w", id, err)
	}

	err := s.DB.Table("students").
		Select(`students.*, r.room_number AS room_number, r.floor AS floor,
			a.date_in AS accommodation_date,
			COALESCE(debt.total_debt, 0) AS total_debt,
			COALESCE(debt.unpaid_months, 0) AS unpaid_months,
			CASE WHEN a.id IS NOT NULL THEN 1 ELSE 0 END AS is_accommodated`).
		Joins("LEFT JOIN accommodation a ON students.id = a.student_id AND a.status = ?", models.AccommodationActive).
		Joins("LEFT JOIN rooms r ON a.room_id = r.id").
		Joins("LEFT JOIN (SELECT student_id, SUM(amount) AS total_debt, COUNT(*) AS unpaid_months FROM payments WHERE status = ? GROUP BY student_id) debt ON students.id = debt.student_id", models.PaymentUnpaid).
		Where("students.id = ?", id).
		Scan(&detail).Error
	if err != nil {
		return detail, fmt.Errorf("failed to load student %d: %w", id, err)
	}
	return detail, nil
}

// Roommates lists the other current residents of the student's room.
func (s *StudentService) Roommates(id uint) ([]Roommate, error) {
	roomSub := s.DB.Table("accommodation").
		Select("room_id").
		Where("student_id = ? AND status = ?", id, models.AccommodationActive)

	var rows []Roommate
	err := s.DB.Table("accommodation a").
		Select("s.id, s.surname, s.name, s.faculty, s.course, s.phone, a.date_in").
		Joins("JOIN students s ON a.student_id = s.id").
		Where("a.room_id = (?) AND a.status = ? AND a.student_id != ?", roomSub, models.AccommodationActive, id).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roommates of student %d: %w", id, err)
	}
	for i := range rows {
		rows[i].StudentName = rows[i].Surname + " " + rows[i].Name
	}
	return rows, nil
}

// Coursemates lists students of the same faculty and course, annotated with
// their housing and debt.
func (s *StudentService) Coursemates(id uint) ([]StudentRow, error) {
	var rows []StudentRow
	err := s.annotated().
		Joins("JOIN students peer ON peer.faculty = students.faculty AND peer.course = students.course").
		Where("peer.id = ? AND students.id != ?", id, id).
		Order("students.surname, students.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list coursemates of student %d: %w", id, err)
	}
	return rows, nil
}

func (s *StudentService) checkPassport(passport string, excludeID uint) error {
	if passport == "" {
		return nil
	}
	q := s.DB.Model(&models.Student{}).Where("passport = ?", passport)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check passport: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: a student with passport %s already exists", ErrPassportTaken, passport)
	}
	return nil
}

func (s *StudentService) Create(student *models.Student) error {
	student.Surname = strings.TrimSpace(student.Surname)
	student.Name = strings.TrimSpace(student.Name)
	if student.Surname == "" || student.Name == "" || student.Faculty == "" || student.Course == 0 {
		return fmt.Errorf("%w: surname, name, course and faculty are required", ErrValidation)
	}
	if err := s.checkPassport(student.Passport, 0); err != nil {
		return err
	}
	if err := s.DB.Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *StudentService) Update(id uint, input models.Student) (models.Student, error) {
	var student models.Student
	if err := s.DB.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return student, fmt.Errorf("%w: student %d", ErrStudentNotFound, id)
		}
		return student, fmt.Errorf("failed to load student %d: %w", id, err)
	}

	if err := s.checkPassport(input.Passport, id); err != nil {
		return student, err
	}

	updates := map[string]interface{}{
		"surname":    input.Surname,
		"name":       input.Name,
		"patronymic": input.Patronymic,
		"course":     input.Course,
		"faculty":    input.Faculty,
		"phone":      input.Phone,
		"passport":   input.Passport,
	}
	if err := s.DB.Model(&student).Updates(updates).Error; err != nil {
		return student, fmt.Errorf("failed to update student %d: %w", id, err)
	}
	return student, nil
}

// Delete is blocked while the student is housed.
func (s *StudentService) Delete(id uint) error {
	var student models.Student
	if err := s.DB.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: student %d", ErrStudentNotFound, id)
		}
		return fmt.Errorf("failed to load student %d: %w", id, err)
	}

	active, err := findActiveByStudent(s.DB, id)
	if err != nil {
		return err
	}
	if active != nil {
		return fmt.Errorf("%w: check the student out of room %s first",
			ErrStudentHoused, active.Room.RoomNumber)
	}

	if err := s.DB.Delete(&student).Error; err != nil {
		return fmt.Errorf("failed to delete student %d: %w", id, err)
	}
	return nil
}
