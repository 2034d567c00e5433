package services

import (
	"fmt"
	"testing"
	"time"

	"dorm-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database with the full schema. The pool is
// limited to one connection so every session sees the same :memory: database
// and concurrent transactions serialize instead of fighting over the file lock.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Admin{},
		&models.Student{},
		&models.Room{},
		&models.Accommodation{},
		&models.Payment{},
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var seedSeq int

func seedStudent(t *testing.T, db *gorm.DB) models.Student {
	t.Helper()
	seedSeq++
	student := models.Student{
		Surname:  "Ivanov",
		Name:     fmt.Sprintf("Student%d", seedSeq),
		Course:   2,
		Faculty:  "Physics",
		Phone:    "+100000000",
		Passport: fmt.Sprintf("AB%06d", seedSeq),
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func seedRoom(t *testing.T, db *gorm.DB, totalBeds int) models.Room {
	t.Helper()
	seedSeq++
	room := models.Room{
		RoomNumber: fmt.Sprintf("%d", 100+seedSeq),
		Floor:      1,
		TotalBeds:  totalBeds,
	}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func reloadRoom(t *testing.T, db *gorm.DB, id uint) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, db.First(&room, id).Error)
	return room
}

func testDate(day int) time.Time {
	return time.Date(2025, time.September, day, 0, 0, 0, 0, time.UTC)
}
