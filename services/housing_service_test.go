package services

import (
	"sync"
	"testing"

	"dorm-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newHousing(db *gorm.DB) *HousingService {
	return NewHousingService(db, NewPaymentService(db, testRate))
}

func TestMoveInHappyPath(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	student := seedStudent(t, db)
	room := seedRoom(t, db, 3)

	result, err := svc.MoveIn(student.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)

	assert.Equal(t, models.AccommodationActive, result.Accommodation.Status)
	assert.Equal(t, student.ID, result.Accommodation.StudentID)
	assert.Equal(t, room.ID, result.Accommodation.RoomID)
	assert.False(t, result.PaymentCreated)

	assert.Equal(t, room.RoomNumber, result.RoomStatus.RoomNumber)
	assert.Equal(t, 1, result.RoomStatus.OccupiedBeds)
	assert.Equal(t, 2, result.RoomStatus.AvailableBeds)

	assert.Equal(t, 1, reloadRoom(t, db, room.ID).OccupiedBeds)
}

func TestMoveInWithFirstCharge(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	student := seedStudent(t, db)
	room := seedRoom(t, db, 2)

	result, err := svc.MoveIn(student.ID, room.ID, testDate(1), &ChargeSpec{
		MonthFrom:  9,
		MonthTo:    12,
		Year:       2025,
		MarkAsPaid: true,
	})
	require.NoError(t, err)

	assert.True(t, result.PaymentCreated)
	require.NotNil(t, result.Payment)
	assert.Equal(t, 4*testRate, result.Payment.Amount)
	assert.Equal(t, models.PaymentPaid, result.Payment.Status)
	require.NotNil(t, result.Payment.PaymentDate)
}

func TestMoveInRejectsSecondActiveEntry(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	student := seedStudent(t, db)
	roomA := seedRoom(t, db, 2)
	roomB := seedRoom(t, db, 2)

	_, err := svc.MoveIn(student.ID, roomA.ID, testDate(1), nil)
	require.NoError(t, err)

	_, err = svc.MoveIn(student.ID, roomB.ID, testDate(2), nil)
	assert.ErrorIs(t, err, ErrStudentAlreadyHoused)
	assert.Equal(t, 0, reloadRoom(t, db, roomB.ID).OccupiedBeds)
}

func TestMoveInRejectsFullRoom(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	room := seedRoom(t, db, 1)

	first := seedStudent(t, db)
	_, err := svc.MoveIn(first.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)

	second := seedStudent(t, db)
	_, err = svc.MoveIn(second.ID, room.ID, testDate(2), nil)
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, 1, reloadRoom(t, db, room.ID).OccupiedBeds)
}

func TestMoveInRollsBackWhenChargeOverlaps(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	student := seedStudent(t, db)
	room := seedRoom(t, db, 2)

	_, err := svc.Payments.CreateCharge(ChargeInput{StudentID: student.ID, MonthFrom: 9, MonthTo: 12, Year: 2025})
	require.NoError(t, err)

	_, err = svc.MoveIn(student.ID, room.ID, testDate(1), &ChargeSpec{MonthFrom: 10, Year: 2025})
	assert.ErrorIs(t, err, ErrPeriodOverlap)

	// the occupancy increment and the ledger entry were rolled back with it
	assert.Equal(t, 0, reloadRoom(t, db, room.ID).OccupiedBeds)
	var count int64
	require.NoError(t, db.Model(&models.Accommodation{}).Where("student_id = ?", student.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransferMovesOccupancy(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	student := seedStudent(t, db)
	roomA := seedRoom(t, db, 2)
	roomB := seedRoom(t, db, 2)

	moveIn, err := svc.MoveIn(student.ID, roomA.ID, testDate(1), nil)
	require.NoError(t, err)

	created, err := svc.Transfer(moveIn.Accommodation.ID, roomB.ID, testDate(10))
	require.NoError(t, err)

	assert.Equal(t, models.AccommodationActive, created.Status)
	assert.Equal(t, roomB.ID, created.RoomID)
	assert.Equal(t, roomB.RoomNumber, created.Room.RoomNumber)
	assert.Equal(t, student.ID, created.Student.ID)

	var old models.Accommodation
	require.NoError(t, db.First(&old, moveIn.Accommodation.ID).Error)
	assert.Equal(t, models.AccommodationTransferred, old.Status)
	require.NotNil(t, old.DateOut)

	assert.Equal(t, 0, reloadRoom(t, db, roomA.ID).OccupiedBeds)
	assert.Equal(t, 1, reloadRoom(t, db, roomB.ID).OccupiedBeds)
}

func TestTransferRejectsSameRoomAndFullRoom(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	student := seedStudent(t, db)
	roomA := seedRoom(t, db, 2)
	roomB := seedRoom(t, db, 1)

	moveIn, err := svc.MoveIn(student.ID, roomA.ID, testDate(1), nil)
	require.NoError(t, err)

	_, err = svc.Transfer(moveIn.Accommodation.ID, roomA.ID, testDate(10))
	assert.ErrorIs(t, err, ErrSameRoom)

	blocker := seedStudent(t, db)
	_, err = svc.MoveIn(blocker.ID, roomB.ID, testDate(1), nil)
	require.NoError(t, err)

	_, err = svc.Transfer(moveIn.Accommodation.ID, roomB.ID, testDate(10))
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, 1, reloadRoom(t, db, roomA.ID).OccupiedBeds)
}

func TestCheckoutReleasesBed(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	student := seedStudent(t, db)
	room := seedRoom(t, db, 2)

	moveIn, err := svc.MoveIn(student.ID, room.ID, testDate(1), nil)
	require.NoError(t, err)

	closed, err := svc.Checkout(moveIn.Accommodation.ID, testDate(20))
	require.NoError(t, err)
	assert.Equal(t, models.AccommodationMovedOut, closed.Status)
	require.NotNil(t, closed.DateOut)
	assert.Equal(t, 0, reloadRoom(t, db, room.ID).OccupiedBeds)

	// checking out twice is rejected and the counter stays at zero
	_, err = svc.Checkout(moveIn.Accommodation.ID, testDate(21))
	assert.ErrorIs(t, err, ErrNotActive)
	assert.Equal(t, 0, reloadRoom(t, db, room.ID).OccupiedBeds)

	// the student can move in again afterwards
	_, err = svc.MoveIn(student.ID, room.ID, testDate(22), nil)
	assert.NoError(t, err)
}

func TestClearRoom(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	room := seedRoom(t, db, 3)

	for i := 0; i < 3; i++ {
		student := seedStudent(t, db)
		_, err := svc.MoveIn(student.ID, room.ID, testDate(1), nil)
		require.NoError(t, err)
	}

	result, err := svc.ClearRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.RoomNumber, result.RoomNumber)
	assert.EqualValues(t, 3, result.Released)
	assert.Equal(t, 0, reloadRoom(t, db, room.ID).OccupiedBeds)

	var active int64
	require.NoError(t, db.Model(&models.Accommodation{}).
		Where("room_id = ? AND status = ?", room.ID, models.AccommodationActive).
		Count(&active).Error)
	assert.Zero(t, active)
}

func TestConcurrentMoveInsNeverOverfill(t *testing.T) {
	db := newTestDB(t)
	svc := newHousing(db)
	room := seedRoom(t, db, 1)

	students := make([]models.Student, 8)
	for i := range students {
		students[i] = seedStudent(t, db)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(students))
	for i, student := range students {
		wg.Add(1)
		go func(i int, studentID uint) {
			defer wg.Done()
			_, errs[i] = svc.MoveIn(studentID, room.ID, testDate(1), nil)
		}(i, student.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrRoomFull)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, reloadRoom(t, db, room.ID).OccupiedBeds)
}
