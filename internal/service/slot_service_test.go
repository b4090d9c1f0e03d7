package service

import (
	"context"
	"testing"
	"time"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSlotStore хранит один слот; deleteRows подменяет результат DELETE,
// чтобы воспроизвести гонку между проверкой и удалением
type fakeSlotStore struct {
	slot        *model.Slot
	deleteRows  int64
	deleteCalls int
}

func (f *fakeSlotStore) Create(_ context.Context, _ base.Querier, _ *model.Slot) error {
	return nil
}

func (f *fakeSlotStore) SlotExists(_ context.Context, _ base.Querier, _ int64, _ time.Time) (bool, error) {
	return false, nil
}

func (f *fakeSlotStore) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	if f.slot == nil || f.slot.ID != id {
		return nil, nil
	}
	return f.slot, nil
}

func (f *fakeSlotStore) GetByInstructorID(_ context.Context, _ int64) ([]*model.Slot, error) {
	return nil, nil
}

func (f *fakeSlotStore) UpdateStatus(_ context.Context, id, instructorID int64, status model.SlotStatus) (*model.Slot, error) {
	if f.slot == nil || f.slot.ID != id || f.slot.InstructorID != instructorID {
		return nil, nil
	}
	f.slot.Status = status
	return f.slot, nil
}

func (f *fakeSlotStore) Delete(_ context.Context, _, _ int64) (int64, error) {
	f.deleteCalls++
	if f.deleteRows > 0 {
		f.slot = nil
	}
	return f.deleteRows, nil
}

func (f *fakeSlotStore) Stats(_ context.Context, _ int64) (*model.InstructorStats, error) {
	return &model.InstructorStats{}, nil
}

func newSlotTestService(store *fakeSlotStore) *SlotService {
	return NewSlotService(nil, store, nil, zap.NewNop())
}

func TestSlotDelete_Success(t *testing.T) {
	store := &fakeSlotStore{
		slot:       &model.Slot{ID: 1, InstructorID: 7, Status: model.SlotStatusAvailable, MaxStudents: 4},
		deleteRows: 1,
	}
	svc := newSlotTestService(store)

	err := svc.Delete(context.Background(), 1, 7)

	require.NoError(t, err)
	assert.Nil(t, store.slot)
}

func TestSlotDelete_NotFound(t *testing.T) {
	store := &fakeSlotStore{}
	svc := newSlotTestService(store)

	err := svc.Delete(context.Background(), 1, 7)

	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.Zero(t, store.deleteCalls)
}

func TestSlotDelete_WrongInstructor(t *testing.T) {
	store := &fakeSlotStore{
		slot: &model.Slot{ID: 1, InstructorID: 7, MaxStudents: 4},
	}
	svc := newSlotTestService(store)

	err := svc.Delete(context.Background(), 1, 8)

	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.Zero(t, store.deleteCalls)
}

// Слот с занятыми местами удалить нельзя: пути декремента счётчика при
// каскадном удалении не существует
func TestSlotDelete_SlotNotEmpty(t *testing.T) {
	store := &fakeSlotStore{
		slot: &model.Slot{ID: 1, InstructorID: 7, MaxStudents: 4, BookedCount: 2},
	}
	svc := newSlotTestService(store)

	err := svc.Delete(context.Background(), 1, 7)

	assert.ErrorIs(t, err, ErrSlotNotEmpty)
	// До DELETE дело не дошло, слот не тронут
	assert.Zero(t, store.deleteCalls)
	assert.NotNil(t, store.slot)
}

// Между проверкой и DELETE место успели занять: предикат booked_count = 0
// в запросе не находит строку, и это тоже ErrSlotNotEmpty
func TestSlotDelete_RaceBetweenCheckAndDelete(t *testing.T) {
	store := &fakeSlotStore{
		slot:       &model.Slot{ID: 1, InstructorID: 7, MaxStudents: 4, BookedCount: 0},
		deleteRows: 0,
	}
	svc := newSlotTestService(store)

	err := svc.Delete(context.Background(), 1, 7)

	assert.ErrorIs(t, err, ErrSlotNotEmpty)
	assert.Equal(t, 1, store.deleteCalls)
	assert.NotNil(t, store.slot)
}

func TestSlotUpdateStatus_NotFound(t *testing.T) {
	store := &fakeSlotStore{}
	svc := newSlotTestService(store)

	_, err := svc.UpdateStatus(context.Background(), 1, 7, model.SlotStatusCompleted)

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestSlotUpdateStatus_Success(t *testing.T) {
	store := &fakeSlotStore{
		slot: &model.Slot{ID: 1, InstructorID: 7, Status: model.SlotStatusAvailable, MaxStudents: 4},
	}
	svc := newSlotTestService(store)

	slot, err := svc.UpdateStatus(context.Background(), 1, 7, model.SlotStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCompleted, slot.Status)
}
