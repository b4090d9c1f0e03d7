package repository

import (
	"context"
	"fmt"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LicenseRepository struct {
	pool *pgxpool.Pool
}

func NewLicenseRepository(pool *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{pool: pool}
}

const licenseColumns = `id, student_id, status, student_details, COALESCE(license_number, ''), certificate_issued_at, created_at, updated_at`

// Upsert создаёт заявку студента или обновляет детали существующей.
// На студента допускается одна заявка (уникальный индекс по student_id).
func (r *LicenseRepository) Upsert(ctx context.Context, app *model.LicenseApplication) error {
	query := `
		INSERT INTO license_applications (student_id, status, student_details)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id)
		DO UPDATE SET student_details = EXCLUDED.student_details, updated_at = NOW()
		RETURNING ` + licenseColumns

	err := r.pool.QueryRow(ctx, query, app.StudentID, app.Status, app.StudentDetails).Scan(
		&app.ID,
		&app.StudentID,
		&app.Status,
		&app.StudentDetails,
		&app.LicenseNumber,
		&app.CertificateIssuedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("upsert license application: %w", err)
	}

	return nil
}

// GetByStudentID получает заявку студента
func (r *LicenseRepository) GetByStudentID(ctx context.Context, studentID int64) (*model.LicenseApplication, error) {
	query := `SELECT ` + licenseColumns + ` FROM license_applications WHERE student_id = $1`

	var app model.LicenseApplication
	err := r.pool.QueryRow(ctx, query, studentID).Scan(
		&app.ID,
		&app.StudentID,
		&app.Status,
		&app.StudentDetails,
		&app.LicenseNumber,
		&app.CertificateIssuedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get license application: %w", err)
	}

	return &app, nil
}

// UpdateProgress продвигает заявку по статусам выдачи
func (r *LicenseRepository) UpdateProgress(ctx context.Context, id int64, status, licenseNumber string, issueCertificate bool) (*model.LicenseApplication, error) {
	query := `
		UPDATE license_applications
		SET status = $1,
		    license_number = NULLIF($2, ''),
		    certificate_issued_at = CASE WHEN $3 THEN NOW() ELSE certificate_issued_at END,
		    updated_at = NOW()
		WHERE id = $4
		RETURNING ` + licenseColumns

	var app model.LicenseApplication
	err := r.pool.QueryRow(ctx, query, status, licenseNumber, issueCertificate, id).Scan(
		&app.ID,
		&app.StudentID,
		&app.Status,
		&app.StudentDetails,
		&app.LicenseNumber,
		&app.CertificateIssuedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("update license progress: %w", err)
	}

	return &app, nil
}
