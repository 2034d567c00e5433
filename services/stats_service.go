package services

import (
	"fmt"
	"math"

	"dorm-backend/models"

	"gorm.io/gorm"
)

// StatsService serves the read-only dashboard aggregates.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

type Statistics struct {
	TotalStudents        int64 `json:"totalStudents"`
	TotalRooms           int64 `json:"totalRooms"`
	OccupiedBeds         int64 `json:"occupiedBeds"`
	TotalBeds            int64 `json:"totalBeds"`
	ActiveAccommodations int64 `json:"activeAccommodations"`
	UnpaidPayments       int64 `json:"unpaidPayments"`
}

type TopDebtor struct {
	ID            uint    `json:"id"`
	Surname       string  `json:"-"`
	Name          string  `json:"-"`
	StudentName   string  `gorm:"-" json:"student_name"`
	Faculty       string  `json:"faculty"`
	Course        int     `json:"course"`
	Phone         string  `json:"phone"`
	UnpaidRecords int64   `json:"unpaid_records"`
	TotalDebt     float64 `json:"total_debt"`
}

type FloorStat struct {
	Floor         int     `json:"floor"`
	TotalRooms    int64   `json:"total_rooms"`
	TotalBeds     int64   `json:"total_beds"`
	OccupiedBeds  int64   `json:"occupied_beds"`
	FreeBeds      int64   `json:"free_beds"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

func (s *StatsService) Overview() (Statistics, error) {
	var stats Statistics

	if err := s.DB.Model(&models.Student{}).Count(&stats.TotalStudents).Error; err != nil {
		return stats, fmt.Errorf("failed to count students: %w", err)
	}
	if err := s.DB.Model(&models.Room{}).Count(&stats.TotalRooms).Error; err != nil {
		return stats, fmt.Errorf("failed to count rooms: %w", err)
	}
	if err := s.DB.Model(&models.Room{}).
		Select("COALESCE(SUM(occupied_beds), 0)").
		Scan(&stats.OccupiedBeds).Error; err != nil {
		return stats, fmt.Errorf("failed to sum occupied beds: %w", err)
	}
	if err := s.DB.Model(&models.Room{}).
		Select("COALESCE(SUM(total_beds), 0)").
		Scan(&stats.TotalBeds).Error; err != nil {
		return stats, fmt.Errorf("failed to sum total beds: %w", err)
	}
	if err := s.DB.Model(&models.Accommodation{}).
		Where("status = ?", models.AccommodationActive).
		Count(&stats.ActiveAccommodations).Error; err != nil {
		return stats, fmt.Errorf("failed to count active accommodations: %w", err)
	}
	if err := s.DB.Model(&models.Payment{}).
		Where("status = ?", models.PaymentUnpaid).
		Count(&stats.UnpaidPayments).Error; err != nil {
		return stats, fmt.Errorf("failed to count unpaid payments: %w", err)
	}

	return stats, nil
}

func (s *StatsService) TopDebtors(limit int) ([]TopDebtor, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var rows []TopDebtor
	err := s.DB.Table("students s").
		Select(`s.id, s.surname, s.name, s.faculty, s.course, s.phone,
			COUNT(p.id) AS unpaid_records, SUM(p.amount) AS total_debt`).
		Joins("JOIN payments p ON s.id = p.student_id").
		Where("p.status = ?", models.PaymentUnpaid).
		Group("s.id, s.surname, s.name, s.faculty, s.course, s.phone").
		Having("SUM(p.amount) > 0").
		Order("total_debt DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list top debtors: %w", err)
	}
	for i := range rows {
		rows[i].StudentName = rows[i].Surname + " " + rows[i].Name
	}
	return rows, nil
}

func (s *StatsService) FloorOccupancy() ([]FloorStat, error) {
	var rows []FloorStat
	err := s.DB.Table("rooms").
		Select(`floor, COUNT(id) AS total_rooms, SUM(total_beds) AS total_beds,
			SUM(occupied_beds) AS occupied_beds,
			SUM(total_beds - occupied_beds) AS free_beds`).
		Group("floor").
		Order("floor").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate floor occupancy: %w", err)
	}
	for i := range rows {
		if rows[i].TotalBeds > 0 {
			rate := float64(rows[i].OccupiedBeds) * 100 / float64(rows[i].TotalBeds)
			rows[i].OccupancyRate = math.Round(rate*100) / 100
		}
	}
	return rows, nil
}
