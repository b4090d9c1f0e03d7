package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

const slotColumns = `id, instructor_id, start_time, status, max_students, booked_count, created_at`

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.InstructorID,
		&slot.StartTime,
		&slot.Status,
		&slot.MaxStudents,
		&slot.BookedCount,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, q base.Querier, slot *model.Slot) error {
	query := `
		INSERT INTO slots (instructor_id, start_time, status, max_students)
		VALUES ($1, $2, $3, $4)
		RETURNING id, booked_count, created_at
	`

	err := q.QueryRow(
		ctx, query,
		slot.InstructorID,
		slot.StartTime,
		slot.Status,
		slot.MaxStudents,
	).Scan(&slot.ID, &slot.BookedCount, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetForUpdate читает слот под эксклюзивной блокировкой строки.
// Блокируется только строка запрошенного слота: бронирования разных
// слотов друг друга не ждут.
func (r *SlotRepository) GetForUpdate(ctx context.Context, q base.Querier, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`

	slot, err := scanSlot(q.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot for update: %w", err)
	}

	return slot, nil
}

// AdmitSeat инкрементирует счётчик занятости и переводит слот в booked,
// если занято последнее место. Вызывается только под блокировкой строки.
func (r *SlotRepository) AdmitSeat(ctx context.Context, q base.Querier, id int64) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET booked_count = booked_count + 1,
		    status = CASE WHEN booked_count + 1 >= max_students THEN 'booked' ELSE 'available' END
		WHERE id = $1
		RETURNING ` + slotColumns

	slot, err := scanSlot(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("admit seat: %w", err)
	}

	return slot, nil
}

// ReleaseSeat декрементирует счётчик занятости и возвращает слот в available,
// если он был заполнен. Вызывается только под блокировкой строки.
func (r *SlotRepository) ReleaseSeat(ctx context.Context, q base.Querier, id int64) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET booked_count = booked_count - 1,
		    status = CASE WHEN status = 'booked' THEN 'available' ELSE status END
		WHERE id = $1
		RETURNING ` + slotColumns

	slot, err := scanSlot(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("release seat: %w", err)
	}

	return slot, nil
}

// SlotExists проверяет существование слота инструктора на указанное время
func (r *SlotRepository) SlotExists(ctx context.Context, q base.Querier, instructorID int64, startTime time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE instructor_id = $1 AND start_time = $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, instructorID, startTime).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slot exists: %w", err)
	}

	return exists, nil
}

// ListAvailable получает слоты с незанятыми местами для записи студентов.
// Запрос read-only и не участвует в протоколе блокировок.
func (r *SlotRepository) ListAvailable(ctx context.Context) ([]*model.Slot, error) {
	query := `
		SELECT s.id, s.instructor_id, s.start_time, s.status, s.max_students, s.booked_count, s.created_at, u.name
		FROM slots s
		JOIN users u ON s.instructor_id = u.id
		WHERE s.status = 'available' AND s.booked_count < s.max_students
		ORDER BY s.start_time ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		var slot model.Slot
		err := rows.Scan(
			&slot.ID,
			&slot.InstructorID,
			&slot.StartTime,
			&slot.Status,
			&slot.MaxStudents,
			&slot.BookedCount,
			&slot.CreatedAt,
			&slot.InstructorName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, nil
}

// GetByInstructorID получает слоты инструктора вместе с ростером студентов
func (r *SlotRepository) GetByInstructorID(ctx context.Context, instructorID int64) ([]*model.Slot, error) {
	query := `
		SELECT s.id, s.instructor_id, s.start_time, s.status, s.max_students, s.booked_count, s.created_at,
		       COALESCE(
		           json_agg(
		               json_build_object(
		                   'id', u.id,
		                   'name', u.name,
		                   'booking_id', b.id,
		                   'km_driven', b.km_driven,
		                   'grade', COALESCE(b.grade, ''),
		                   'notes', COALESCE(b.instructor_notes, ''),
		                   'status', b.status
		               )
		           ) FILTER (WHERE u.id IS NOT NULL),
		           '[]'
		       ) AS students
		FROM slots s
		LEFT JOIN bookings b ON s.id = b.slot_id
		LEFT JOIN users u ON b.student_id = u.id
		WHERE s.instructor_id = $1
		GROUP BY s.id
		ORDER BY s.start_time ASC
	`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get slots by instructor: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		var slot model.Slot
		var studentsJSON []byte
		err := rows.Scan(
			&slot.ID,
			&slot.InstructorID,
			&slot.StartTime,
			&slot.Status,
			&slot.MaxStudents,
			&slot.BookedCount,
			&slot.CreatedAt,
			&studentsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}

		if err := json.Unmarshal(studentsJSON, &slot.Students); err != nil {
			return nil, fmt.Errorf("decode slot roster: %w", err)
		}

		slots = append(slots, &slot)
	}

	return slots, nil
}

// UpdateStatus обновляет статус слота, принадлежащего инструктору
func (r *SlotRepository) UpdateStatus(ctx context.Context, id, instructorID int64, status model.SlotStatus) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET status = $1
		WHERE id = $2 AND instructor_id = $3
		RETURNING ` + slotColumns

	slot, err := scanSlot(r.pool.QueryRow(ctx, query, status, id, instructorID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update slot status: %w", err)
	}

	return slot, nil
}

// MarkCompleted переводит слот бронирования в completed
func (r *SlotRepository) MarkCompleted(ctx context.Context, q base.Querier, bookingID int64) error {
	query := `
		UPDATE slots
		SET status = 'completed'
		WHERE id = (SELECT slot_id FROM bookings WHERE id = $1)
	`

	if _, err := q.Exec(ctx, query, bookingID); err != nil {
		return fmt.Errorf("mark slot completed: %w", err)
	}

	return nil
}

// Delete удаляет слот без активных бронирований.
// Возвращает количество удалённых строк: 0 означает, что слот не найден
// либо в нём ещё заняты места.
func (r *SlotRepository) Delete(ctx context.Context, id, instructorID int64) (int64, error) {
	query := `
		DELETE FROM slots
		WHERE id = $1 AND instructor_id = $2 AND booked_count = 0
	`

	result, err := r.pool.Exec(ctx, query, id, instructorID)
	if err != nil {
		return 0, fmt.Errorf("delete slot: %w", err)
	}

	return result.RowsAffected(), nil
}

// Stats считает сводные показатели инструктора
func (r *SlotRepository) Stats(ctx context.Context, instructorID int64) (*model.InstructorStats, error) {
	var stats model.InstructorStats

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM slots
		WHERE instructor_id = $1 AND status = 'completed'
	`, instructorID).Scan(&stats.CompletedLessons)
	if err != nil {
		return nil, fmt.Errorf("count completed lessons: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM slots
		WHERE instructor_id = $1 AND start_time > NOW() AND booked_count > 0
	`, instructorID).Scan(&stats.UpcomingLessons)
	if err != nil {
		return nil, fmt.Errorf("count upcoming lessons: %w", err)
	}

	return &stats, nil
}
