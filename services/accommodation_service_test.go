package services

import (
	"testing"

	"dorm-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccommodationListStatusFilter(t *testing.T) {
	db := newTestDB(t)
	housing := newHousing(db)
	svc := NewAccommodationService(db)

	room := seedRoom(t, db, 2)
	staying := seedStudent(t, db)
	leaving := seedStudent(t, db)

	_, err := housing.MoveIn(staying.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)
	moveIn, err := housing.MoveIn(leaving.ID, room.ID, testDate(2), nil)
	require.NoError(t, err)
	_, err = housing.Checkout(moveIn.Accommodation.ID, testDate(10))
	require.NoError(t, err)

	all, total, err := svc.List(1, 50, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, all, 2)
	assert.Equal(t, leaving.ID, all[0].Student.ID, "newest move-in first")

	active, total, err := svc.List(1, 50, models.AccommodationActive)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, active, 1)
	assert.Equal(t, staying.ID, active[0].StudentID)
	assert.Equal(t, room.RoomNumber, active[0].Room.RoomNumber)
}

func TestFindActiveByRoom(t *testing.T) {
	db := newTestDB(t)
	housing := newHousing(db)
	svc := NewAccommodationService(db)

	room := seedRoom(t, db, 3)
	other := seedRoom(t, db, 1)

	a := seedStudent(t, db)
	b := seedStudent(t, db)
	elsewhere := seedStudent(t, db)

	_, err := housing.MoveIn(a.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)
	_, err = housing.MoveIn(b.ID, room.ID, testDate(2), nil)
	require.NoError(t, err)
	_, err = housing.MoveIn(elsewhere.ID, other.ID, testDate(1), nil)
	require.NoError(t, err)

	residents, err := svc.FindActiveByRoom(room.ID)
	require.NoError(t, err)
	require.Len(t, residents, 2)
	assert.Equal(t, a.ID, residents[0].StudentID)
	assert.Equal(t, b.ID, residents[1].StudentID)
	assert.Equal(t, a.Name, residents[0].Student.Name)
}
