package repository

import (
	"context"
	"fmt"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, q base.Querier, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (slot_id, student_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, km_driven, created_at
	`

	err := q.QueryRow(
		ctx, query,
		booking.SlotID,
		booking.StudentID,
		booking.Status,
	).Scan(&booking.ID, &booking.KmDriven, &booking.CreatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// Exists проверяет наличие бронирования пары (слот, студент)
func (r *BookingRepository) Exists(ctx context.Context, q base.Querier, slotID, studentID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE slot_id = $1 AND student_id = $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, slotID, studentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check booking exists: %w", err)
	}

	return exists, nil
}

// DeleteBySlotStudent удаляет бронирование пары (слот, студент).
// Возвращает количество удалённых строк.
func (r *BookingRepository) DeleteBySlotStudent(ctx context.Context, q base.Querier, slotID, studentID int64) (int64, error) {
	query := `DELETE FROM bookings WHERE slot_id = $1 AND student_id = $2`

	result, err := q.Exec(ctx, query, slotID, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete booking: %w", err)
	}

	return result.RowsAffected(), nil
}

// GetByStudentID получает историю бронирований студента со временем занятия
// и именем инструктора
func (r *BookingRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	query := `
		SELECT b.id, b.slot_id, b.student_id, b.km_driven, COALESCE(b.grade, ''),
		       COALESCE(b.instructor_notes, ''), b.status, b.created_at,
		       s.start_time, u.name
		FROM bookings b
		JOIN slots s ON b.slot_id = s.id
		JOIN users u ON s.instructor_id = u.id
		WHERE b.student_id = $1
		ORDER BY s.start_time ASC
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by student: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		var booking model.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.SlotID,
			&booking.StudentID,
			&booking.KmDriven,
			&booking.Grade,
			&booking.InstructorNotes,
			&booking.Status,
			&booking.CreatedAt,
			&booking.StartTime,
			&booking.InstructorName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// UpdateOutcome записывает итоги занятия в журнал бронирования
func (r *BookingRepository) UpdateOutcome(ctx context.Context, q base.Querier, id int64, kmDriven float64, grade, notes string, status model.BookingStatus) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET km_driven = $1, grade = $2, instructor_notes = $3, status = $4
		WHERE id = $5
		RETURNING id, slot_id, student_id, km_driven, COALESCE(grade, ''), COALESCE(instructor_notes, ''), status, created_at
	`

	var booking model.Booking
	err := q.QueryRow(ctx, query, kmDriven, grade, notes, status, id).Scan(
		&booking.ID,
		&booking.SlotID,
		&booking.StudentID,
		&booking.KmDriven,
		&booking.Grade,
		&booking.InstructorNotes,
		&booking.Status,
		&booking.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("update booking outcome: %w", err)
	}

	return &booking, nil
}
