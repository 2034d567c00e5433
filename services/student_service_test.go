package services

import (
	"testing"

	"dorm-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)

	err := svc.Create(&models.Student{Surname: "Petrov"})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.Create(&models.Student{Surname: "Petrov", Name: "Ivan", Course: 1, Faculty: "Math"})
	assert.NoError(t, err)
}

func TestStudentPassportUniqueness(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)

	first := models.Student{Surname: "Petrov", Name: "Ivan", Course: 1, Faculty: "Math", Passport: "AA111"}
	require.NoError(t, svc.Create(&first))

	dup := models.Student{Surname: "Sidorov", Name: "Oleg", Course: 2, Faculty: "Math", Passport: "AA111"}
	assert.ErrorIs(t, svc.Create(&dup), ErrPassportTaken)

	second := models.Student{Surname: "Sidorov", Name: "Oleg", Course: 2, Faculty: "Math", Passport: "AA222"}
	require.NoError(t, svc.Create(&second))

	// moving one passport onto the other is rejected, keeping your own is fine
	second.Passport = "AA111"
	_, err := svc.Update(second.ID, second)
	assert.ErrorIs(t, err, ErrPassportTaken)

	second.Passport = "AA222"
	second.Course = 3
	_, err = svc.Update(second.ID, second)
	require.NoError(t, err)

	var got models.Student
	require.NoError(t, db.First(&got, second.ID).Error)
	assert.Equal(t, 3, got.Course)
}

func TestStudentDeleteBlockedWhileHoused(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)
	housing := newHousing(db)

	student := seedStudent(t, db)
	room := seedRoom(t, db, 2)

	moveIn, err := housing.MoveIn(student.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(student.ID), ErrStudentHoused)

	_, err = housing.Checkout(moveIn.Accommodation.ID, testDate(5))
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(student.ID))
}

func TestStudentListAnnotations(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)
	housing := newHousing(db)

	housed := seedStudent(t, db)
	unhoused := seedStudent(t, db)
	room := seedRoom(t, db, 2)

	_, err := housing.MoveIn(housed.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)
	_, err = housing.Payments.CreateCharge(ChargeInput{StudentID: housed.ID, MonthFrom: 9, MonthTo: 10, Year: 2025})
	require.NoError(t, err)

	rows, total, err := svc.List(StudentListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	byID := map[uint]StudentRow{}
	for _, row := range rows {
		byID[row.ID] = row
	}

	housedRow := byID[housed.ID]
	assert.True(t, housedRow.IsAccommodated)
	require.NotNil(t, housedRow.RoomNumber)
	assert.Equal(t, room.RoomNumber, *housedRow.RoomNumber)
	assert.Equal(t, 2*testRate, housedRow.TotalDebt)

	unhousedRow := byID[unhoused.ID]
	assert.False(t, unhousedRow.IsAccommodated)
	assert.Nil(t, unhousedRow.RoomNumber)
	assert.Zero(t, unhousedRow.TotalDebt)
}

func TestStudentListRejectsUnknownSortField(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)

	_, _, err := svc.List(StudentListOptions{SortBy: "passport; DROP TABLE students"})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestListUnhoused(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)
	housing := newHousing(db)

	housed := seedStudent(t, db)
	free := seedStudent(t, db)
	room := seedRoom(t, db, 1)

	_, err := housing.MoveIn(housed.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)

	students, err := svc.ListUnhoused()
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, free.ID, students[0].ID)
}

func TestRoommates(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)
	housing := newHousing(db)

	room := seedRoom(t, db, 3)
	a := seedStudent(t, db)
	b := seedStudent(t, db)
	c := seedStudent(t, db)

	for _, s := range []models.Student{a, b} {
		_, err := housing.MoveIn(s.ID, room.ID, testDate(1), nil)
		require.NoError(t, err)
	}
	// c lives elsewhere
	other := seedRoom(t, db, 1)
	_, err := housing.MoveIn(c.ID, other.ID, testDate(1), nil)
	require.NoError(t, err)

	mates, err := svc.Roommates(a.ID)
	require.NoError(t, err)
	require.Len(t, mates, 1)
	assert.Equal(t, b.ID, mates[0].ID)
	assert.Equal(t, b.Surname+" "+b.Name, mates[0].StudentName)
}

func TestStudentGetDetail(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)
	housing := newHousing(db)

	student := seedStudent(t, db)
	room := seedRoom(t, db, 2)

	_, err := housing.MoveIn(student.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)
	_, err = housing.Payments.CreateCharge(ChargeInput{StudentID: student.ID, MonthFrom: 9, Year: 2025})
	require.NoError(t, err)

	detail, err := svc.Get(student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, detail.ID)
	assert.True(t, detail.IsAccommodated)
	assert.EqualValues(t, 1, detail.UnpaidMonths)
	assert.Equal(t, testRate, detail.TotalDebt)
	assert.NotNil(t, detail.AccommodationDate)

	_, err = svc.Get(9999)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
