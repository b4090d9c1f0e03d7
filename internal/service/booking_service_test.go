package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers struct {
	users map[int64]*model.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	return f.users[id], nil
}

// fakeLedger реализует семантику вместимости в памяти: мьютекс вместо
// блокировки строки, те же решения и исходы, что у CapacityLedger
type fakeLedger struct {
	mu       sync.Mutex
	slot     *model.Slot
	bookings map[int64]int64 // studentID -> bookingID
	nextID   int64
	failWith error
}

func newFakeLedger(maxStudents int) *fakeLedger {
	return &fakeLedger{
		slot: &model.Slot{
			ID:          1,
			StartTime:   time.Now().Add(24 * time.Hour),
			Status:      model.SlotStatusAvailable,
			MaxStudents: maxStudents,
		},
		bookings: make(map[int64]int64),
	}
}

func (f *fakeLedger) TryReserve(_ context.Context, slotID, studentID int64) (*model.Slot, *model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		// Инфраструктурный сбой после захвата блокировки: никаких эффектов
		return nil, nil, f.failWith
	}

	if f.slot == nil || f.slot.ID != slotID {
		return nil, nil, ErrSlotNotFound
	}
	if f.slot.IsFull() {
		return nil, nil, ErrSlotFull
	}
	if _, ok := f.bookings[studentID]; ok {
		return nil, nil, ErrDuplicateBooking
	}

	f.nextID++
	f.bookings[studentID] = f.nextID
	f.slot.BookedCount++
	if f.slot.IsFull() {
		f.slot.Status = model.SlotStatusBooked
	}

	snapshot := *f.slot
	booking := &model.Booking{
		ID:        f.nextID,
		SlotID:    slotID,
		StudentID: studentID,
		Status:    model.BookingStatusScheduled,
	}

	return &snapshot, booking, nil
}

func (f *fakeLedger) Release(_ context.Context, slotID, studentID int64) (*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.slot == nil || f.slot.ID != slotID {
		return nil, ErrSlotNotFound
	}
	if _, ok := f.bookings[studentID]; !ok {
		return nil, ErrBookingNotFound
	}

	delete(f.bookings, studentID)
	f.slot.BookedCount--
	if f.slot.Status == model.SlotStatusBooked {
		f.slot.Status = model.SlotStatusAvailable
	}

	snapshot := *f.slot
	return &snapshot, nil
}

func approvedStudent(id int64) *model.User {
	return &model.User{ID: id, Role: model.RoleStudent, Status: model.ApprovalApproved}
}

func newTestService(users *fakeUsers, ledger SeatLedger) *BookingService {
	return NewBookingService(nil, users, ledger, nil, nil, zap.NewNop())
}

func TestBook_Success(t *testing.T) {
	ledger := newFakeLedger(4)
	users := &fakeUsers{users: map[int64]*model.User{10: approvedStudent(10)}}
	svc := newTestService(users, ledger)

	slot, booking, err := svc.Book(context.Background(), 10, 1)

	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, 1, slot.BookedCount)
	assert.Equal(t, model.SlotStatusAvailable, slot.Status)
	assert.Equal(t, int64(10), booking.StudentID)
}

func TestBook_StudentNotFound(t *testing.T) {
	ledger := newFakeLedger(4)
	users := &fakeUsers{users: map[int64]*model.User{}}
	svc := newTestService(users, ledger)

	_, _, err := svc.Book(context.Background(), 99, 1)

	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.Equal(t, 0, ledger.slot.BookedCount)
}

func TestBook_SlotNotFound(t *testing.T) {
	ledger := newFakeLedger(4)
	users := &fakeUsers{users: map[int64]*model.User{10: approvedStudent(10)}}
	svc := newTestService(users, ledger)

	_, _, err := svc.Book(context.Background(), 10, 42)

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestBook_EligibilityGate(t *testing.T) {
	tests := []struct {
		name   string
		status model.ApprovalStatus
	}{
		{"pending student", model.ApprovalPending},
		{"rejected student", model.ApprovalRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger(4)
			users := &fakeUsers{users: map[int64]*model.User{
				10: {ID: 10, Role: model.RoleStudent, Status: tt.status},
			}}
			svc := newTestService(users, ledger)

			_, _, err := svc.Book(context.Background(), 10, 1)

			assert.ErrorIs(t, err, ErrNotEligible)
			// Неподходящий студент не должен менять счётчик занятости
			assert.Equal(t, 0, ledger.slot.BookedCount)
			assert.Empty(t, ledger.bookings)
		})
	}
}

func TestBook_InstructorCannotBook(t *testing.T) {
	ledger := newFakeLedger(4)
	users := &fakeUsers{users: map[int64]*model.User{
		5: {ID: 5, Role: model.RoleInstructor, Status: model.ApprovalApproved},
	}}
	svc := newTestService(users, ledger)

	_, _, err := svc.Book(context.Background(), 5, 1)

	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestBook_DuplicateBooking(t *testing.T) {
	ledger := newFakeLedger(4)
	ledger.slot.BookedCount = 3
	users := &fakeUsers{users: map[int64]*model.User{10: approvedStudent(10)}}
	svc := newTestService(users, ledger)

	_, _, err := svc.Book(context.Background(), 10, 1)
	require.NoError(t, err)

	_, _, err = svc.Book(context.Background(), 10, 1)

	assert.ErrorIs(t, err, ErrDuplicateBooking)
	// Счётчик инкрементирован ровно один раз
	assert.Equal(t, 4, ledger.slot.BookedCount)
}

func TestBook_SlotFull(t *testing.T) {
	ledger := newFakeLedger(1)
	users := &fakeUsers{users: map[int64]*model.User{
		10: approvedStudent(10),
		11: approvedStudent(11),
	}}
	svc := newTestService(users, ledger)

	slot, _, err := svc.Book(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBooked, slot.Status)

	_, _, err = svc.Book(context.Background(), 11, 1)

	assert.ErrorIs(t, err, ErrSlotFull)
	assert.Equal(t, 1, ledger.slot.BookedCount)
}

// TestBook_NoOverAdmission: N+k одновременных попыток на слот с N местами
// дают ровно N успехов, остальные детерминированно получают ErrSlotFull
func TestBook_NoOverAdmission(t *testing.T) {
	const maxStudents = 2
	const callers = 5

	ledger := newFakeLedger(maxStudents)
	users := &fakeUsers{users: make(map[int64]*model.User)}
	for i := int64(1); i <= callers; i++ {
		users.users[i] = approvedStudent(i)
	}
	svc := newTestService(users, ledger)

	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := int64(1); i <= callers; i++ {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, _, err := svc.Book(context.Background(), studentID, 1)
			results <- err
		}(i)
	}

	wg.Wait()
	close(results)

	var succeeded, full int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, maxStudents, succeeded)
	assert.Equal(t, callers-maxStudents, full)
	assert.Equal(t, maxStudents, ledger.slot.BookedCount)
	assert.Equal(t, model.SlotStatusBooked, ledger.slot.Status)
	assert.Len(t, ledger.bookings, maxStudents)
}

func TestBook_InfrastructureFailureLeavesNoEffects(t *testing.T) {
	ledger := newFakeLedger(4)
	ledger.failWith = errors.New("connection reset by peer")
	users := &fakeUsers{users: map[int64]*model.User{10: approvedStudent(10)}}
	svc := newTestService(users, ledger)

	_, _, err := svc.Book(context.Background(), 10, 1)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotFull)
	assert.Equal(t, 0, ledger.slot.BookedCount)
	assert.Empty(t, ledger.bookings)
}

func TestCancelBooking(t *testing.T) {
	ledger := newFakeLedger(1)
	users := &fakeUsers{users: map[int64]*model.User{10: approvedStudent(10)}}
	svc := newTestService(users, ledger)

	_, _, err := svc.Book(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Equal(t, model.SlotStatusBooked, ledger.slot.Status)

	slot, err := svc.CancelBooking(context.Background(), 10, 1)

	require.NoError(t, err)
	assert.Equal(t, 0, slot.BookedCount)
	assert.Equal(t, model.SlotStatusAvailable, slot.Status)

	_, err = svc.CancelBooking(context.Background(), 10, 1)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
