package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository"
	"github.com/drivehub/driveschool/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CapacityLedger сериализует конкурентные попытки занять место в одном
// слоте. Вся проверка вместимости выполняется под эксклюзивной блокировкой
// строки слота внутри одной транзакции: либо бронирование и инкремент
// счётчика фиксируются вместе, либо не фиксируется ничего.
type CapacityLedger struct {
	pool        *pgxpool.Pool
	slotRepo    *repository.SlotRepository
	bookingRepo *repository.BookingRepository
	lockTimeout time.Duration
	logger      *zap.Logger
}

func NewCapacityLedger(
	pool *pgxpool.Pool,
	slotRepo *repository.SlotRepository,
	bookingRepo *repository.BookingRepository,
	lockTimeout time.Duration,
	logger *zap.Logger,
) *CapacityLedger {
	return &CapacityLedger{
		pool:        pool,
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// setLockTimeout ограничивает ожидание блокировки строки в рамках транзакции
func (l *CapacityLedger) setLockTimeout(ctx context.Context, q base.Querier) error {
	ms := strconv.FormatInt(l.lockTimeout.Milliseconds(), 10)
	if _, err := q.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", ms); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}
	return nil
}

// TryReserve атомарно занимает место в слоте для студента.
//
// Свободность места проверяется заново после захвата блокировки, а не по
// состоянию на момент запроса: два запроса, одновременно увидевших
// последнее свободное место, разрешаются порядком захвата блокировки.
// Проигравший детерминированно получает ErrSlotFull.
func (l *CapacityLedger) TryReserve(ctx context.Context, slotID, studentID int64) (*model.Slot, *model.Booking, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := l.setLockTimeout(ctx, tx); err != nil {
		return nil, nil, err
	}

	slot, err := l.slotRepo.GetForUpdate(ctx, tx, slotID)
	if err != nil {
		if base.IsLockTimeout(err) {
			return nil, nil, ErrLockTimeout
		}
		return nil, nil, err
	}
	if slot == nil {
		return nil, nil, ErrSlotNotFound
	}

	// Повторная проверка под блокировкой: счётчик мог вырасти, пока мы ждали
	if slot.IsFull() {
		return nil, nil, ErrSlotFull
	}

	exists, err := l.bookingRepo.Exists(ctx, tx, slotID, studentID)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrDuplicateBooking
	}

	booking := &model.Booking{
		SlotID:    slotID,
		StudentID: studentID,
		Status:    model.BookingStatusScheduled,
	}

	if err := l.bookingRepo.Create(ctx, tx, booking); err != nil {
		// Уникальный индекс (slot_id, student_id) страхует проверку выше
		if base.IsUniqueViolation(err) {
			return nil, nil, ErrDuplicateBooking
		}
		return nil, nil, err
	}

	slot, err = l.slotRepo.AdmitSeat(ctx, tx, slotID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}

	l.logger.Info("Seat reserved",
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", studentID),
		zap.Int64("booking_id", booking.ID),
		zap.Int("booked_count", slot.BookedCount),
		zap.String("slot_status", string(slot.Status)),
	)

	return slot, booking, nil
}

// Release атомарно снимает бронирование студента и возвращает место в слот
func (l *CapacityLedger) Release(ctx context.Context, slotID, studentID int64) (*model.Slot, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := l.setLockTimeout(ctx, tx); err != nil {
		return nil, err
	}

	slot, err := l.slotRepo.GetForUpdate(ctx, tx, slotID)
	if err != nil {
		if base.IsLockTimeout(err) {
			return nil, ErrLockTimeout
		}
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	deleted, err := l.bookingRepo.DeleteBySlotStudent(ctx, tx, slotID, studentID)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrBookingNotFound
	}

	slot, err = l.slotRepo.ReleaseSeat(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	l.logger.Info("Seat released",
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", studentID),
		zap.Int("booked_count", slot.BookedCount),
	)

	return slot, nil
}
