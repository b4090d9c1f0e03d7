package service

import (
	"context"
	"fmt"
	"time"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository"
	"github.com/drivehub/driveschool/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SlotStore описывает операции хранилища слотов, нужные сервису
type SlotStore interface {
	Create(ctx context.Context, q base.Querier, slot *model.Slot) error
	SlotExists(ctx context.Context, q base.Querier, instructorID int64, startTime time.Time) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetByInstructorID(ctx context.Context, instructorID int64) ([]*model.Slot, error)
	UpdateStatus(ctx context.Context, id, instructorID int64, status model.SlotStatus) (*model.Slot, error)
	Delete(ctx context.Context, id, instructorID int64) (int64, error)
	Stats(ctx context.Context, instructorID int64) (*model.InstructorStats, error)
}

type SlotService struct {
	pool     *pgxpool.Pool
	slotRepo SlotStore
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewSlotService(
	pool *pgxpool.Pool,
	slotRepo SlotStore,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		pool:     pool,
		slotRepo: slotRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

const defaultMaxStudents = 4

// CreateSlots создаёт слоты инструктора на указанные времена одной
// транзакцией. Повторы по (инструктор, время) молча пропускаются.
func (s *SlotService) CreateSlots(ctx context.Context, instructorID int64, startTimes []time.Time, maxStudents int) ([]*model.Slot, error) {
	if maxStudents <= 0 {
		maxStudents = defaultMaxStudents
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created := make([]*model.Slot, 0, len(startTimes))
	for _, startTime := range startTimes {
		exists, err := s.slotRepo.SlotExists(ctx, tx, instructorID, startTime)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		slot := &model.Slot{
			InstructorID: instructorID,
			StartTime:    startTime,
			Status:       model.SlotStatusAvailable,
			MaxStudents:  maxStudents,
		}

		if err := s.slotRepo.Create(ctx, tx, slot); err != nil {
			return nil, err
		}

		created = append(created, slot)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Slots created",
		zap.Int64("instructor_id", instructorID),
		zap.Int("requested", len(startTimes)),
		zap.Int("created", len(created)),
	)

	return created, nil
}

// InstructorSchedule получает расписание инструктора с ростером студентов
func (s *SlotService) InstructorSchedule(ctx context.Context, instructorID int64) ([]*model.Slot, error) {
	return s.slotRepo.GetByInstructorID(ctx, instructorID)
}

// UpdateStatus меняет статус слота инструктора
func (s *SlotService) UpdateStatus(ctx context.Context, slotID, instructorID int64, status model.SlotStatus) (*model.Slot, error) {
	slot, err := s.slotRepo.UpdateStatus(ctx, slotID, instructorID, status)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	s.logger.Info("Slot status updated",
		zap.Int64("slot_id", slotID),
		zap.String("status", string(status)),
	)

	return slot, nil
}

// Delete удаляет слот инструктора. Слот с активными бронированиями удалить
// нельзя: пути декремента счётчика при каскадном удалении не существует,
// сначала снимаются бронирования по одному либо слот завершается.
func (s *SlotService) Delete(ctx context.Context, slotID, instructorID int64) error {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot == nil || slot.InstructorID != instructorID {
		return ErrSlotNotFound
	}
	if slot.BookedCount > 0 {
		return ErrSlotNotEmpty
	}

	deleted, err := s.slotRepo.Delete(ctx, slotID, instructorID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		// Между проверкой и удалением место успели занять
		return ErrSlotNotEmpty
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("instructor_id", instructorID),
	)

	return nil
}

// Stats собирает сводные показатели инструктора
func (s *SlotService) Stats(ctx context.Context, instructorID int64) (*model.InstructorStats, error) {
	stats, err := s.slotRepo.Stats(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	students, err := s.userRepo.CountApprovedStudents(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalStudents = students

	return stats, nil
}
