package repository

import (
	"context"
	"fmt"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (name, email, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, name, email, role, status, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, name, email, role, status, created_at
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

// GetStudentsByStatus получает студентов с заданным статусом одобрения
func (r *UserRepository) GetStudentsByStatus(ctx context.Context, status model.ApprovalStatus) ([]*model.User, error) {
	query := `
		SELECT id, name, email, role, status, created_at
		FROM users
		WHERE role = 'student' AND status = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("get students by status: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.Status,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, nil
}

// UpdateStatus обновляет статус одобрения пользователя
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status model.ApprovalStatus) error {
	query := `
		UPDATE users
		SET status = $1
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// CountApprovedStudents подсчитывает одобренных студентов
func (r *UserRepository) CountApprovedStudents(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM users
		WHERE role = 'student' AND status = 'approved'
	`

	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count approved students: %w", err)
	}

	return count, nil
}

// Delete удаляет студента вместе с его бронированиями, корректируя счётчики
// занятости затронутых слотов в той же транзакции
func (r *UserRepository) Delete(ctx context.Context, studentID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Возвращаем места в слоты перед каскадным удалением бронирований
	_, err = tx.Exec(ctx, `
		UPDATE slots s
		SET booked_count = booked_count - 1,
		    status = CASE WHEN s.status = 'booked' THEN 'available' ELSE s.status END
		FROM bookings b
		WHERE b.slot_id = s.id AND b.student_id = $1 AND b.status = 'scheduled'
	`, studentID)
	if err != nil {
		return fmt.Errorf("release booked seats: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1 AND role = 'student'`, studentID)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("student not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
