package service

import (
	"context"
	"fmt"
	"time"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SeatLedger описывает атомарное занятие и возврат мест (CapacityLedger)
type SeatLedger interface {
	TryReserve(ctx context.Context, slotID, studentID int64) (*model.Slot, *model.Booking, error)
	Release(ctx context.Context, slotID, studentID int64) (*model.Slot, error)
}

// UserDirectory отдаёт пользователя для проверки статуса одобрения
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Цель прогресса обучения: столько завершённых занятий считается полным курсом
const lessonGoal = 10

type BookingService struct {
	pool        *pgxpool.Pool
	userRepo    UserDirectory
	ledger      SeatLedger
	slotRepo    *repository.SlotRepository
	bookingRepo *repository.BookingRepository
	logger      *zap.Logger
}

func NewBookingService(
	pool *pgxpool.Pool,
	userRepo UserDirectory,
	ledger SeatLedger,
	slotRepo *repository.SlotRepository,
	bookingRepo *repository.BookingRepository,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		pool:        pool,
		userRepo:    userRepo,
		ledger:      ledger,
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Book записывает студента на занятие.
//
// Статус одобрения проверяется до обращения к леджеру: pending и rejected
// студенты не доходят до блокировки слота и не меняют счётчик занятости.
// Исходы ErrSlotFull и ErrDuplicateBooking пробрасываются как есть.
func (s *BookingService) Book(ctx context.Context, studentID, slotID int64) (*model.Slot, *model.Booking, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("get student: %w", err)
	}

	if student == nil || !student.IsStudent() {
		return nil, nil, ErrStudentNotFound
	}

	if !student.CanBook() {
		s.logger.Info("Booking refused: student not eligible",
			zap.Int64("student_id", studentID),
			zap.Int64("slot_id", slotID),
			zap.String("approval_status", string(student.Status)),
		)
		return nil, nil, ErrNotEligible
	}

	slot, booking, err := s.ledger.TryReserve(ctx, slotID, studentID)
	if err != nil {
		return nil, nil, err
	}

	return slot, booking, nil
}

// CancelBooking снимает запись студента и возвращает место в слот
func (s *BookingService) CancelBooking(ctx context.Context, studentID, slotID int64) (*model.Slot, error) {
	return s.ledger.Release(ctx, slotID, studentID)
}

// RecordLessonOutcome записывает итоги занятия (километраж, оценка, заметки)
// и переводит слот в completed одной транзакцией
func (s *BookingService) RecordLessonOutcome(ctx context.Context, bookingID int64, kmDriven float64, grade, notes string, status model.BookingStatus) (*model.Booking, error) {
	if status == "" {
		status = model.BookingStatusCompleted
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookingRepo.UpdateOutcome(ctx, tx, bookingID, kmDriven, grade, notes, status)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if err := s.slotRepo.MarkCompleted(ctx, tx, bookingID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Lesson outcome recorded",
		zap.Int64("booking_id", bookingID),
		zap.Float64("km_driven", kmDriven),
		zap.String("status", string(status)),
	)

	return booking, nil
}

// ListAvailableSlots получает слоты со свободными местами
func (s *BookingService) ListAvailableSlots(ctx context.Context) ([]*model.Slot, error) {
	return s.slotRepo.ListAvailable(ctx)
}

// StudentHistory получает историю бронирований студента
func (s *BookingService) StudentHistory(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	return s.bookingRepo.GetByStudentID(ctx, studentID)
}

// StudentProgress строит сводку обучения студента
func (s *BookingService) StudentProgress(ctx context.Context, studentID int64) (*model.StudentProgress, error) {
	bookings, err := s.bookingRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student bookings: %w", err)
	}

	now := time.Now()
	progress := &model.StudentProgress{
		Upcoming:  []*model.Booking{},
		Completed: []*model.Booking{},
	}

	for _, b := range bookings {
		switch {
		case b.Status == model.BookingStatusScheduled && b.StartTime != nil && b.StartTime.After(now):
			progress.Upcoming = append(progress.Upcoming, b)
		case b.Status == model.BookingStatusCompleted:
			progress.Completed = append(progress.Completed, b)
		}
	}

	progress.TotalLessons = len(progress.Completed)
	progress.ProgressPercentage = float64(progress.TotalLessons) / lessonGoal * 100
	if progress.ProgressPercentage > 100 {
		progress.ProgressPercentage = 100
	}

	return progress, nil
}
