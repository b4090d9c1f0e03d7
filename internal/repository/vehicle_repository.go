package repository

import (
	"context"
	"fmt"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VehicleRepository struct {
	pool *pgxpool.Pool
}

func NewVehicleRepository(pool *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

const vehicleColumns = `id, instructor_id, make, model, year, plate_number, COALESCE(image_url, ''),
	last_service_date, next_service_due_date, insurance_expiry_date, road_tax_expiry_date, created_at`

func scanVehicle(row pgx.Row) (*model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(
		&v.ID,
		&v.InstructorID,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.PlateNumber,
		&v.ImageURL,
		&v.LastServiceDate,
		&v.NextServiceDueDate,
		&v.InsuranceExpiry,
		&v.RoadTaxExpiry,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Upsert сохраняет машину инструктора (одна машина на инструктора)
func (r *VehicleRepository) Upsert(ctx context.Context, v *model.Vehicle) error {
	query := `
		INSERT INTO vehicles (instructor_id, make, model, year, plate_number, image_url,
		                      last_service_date, next_service_due_date, insurance_expiry_date, road_tax_expiry_date)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
		ON CONFLICT (instructor_id)
		DO UPDATE SET make = EXCLUDED.make, model = EXCLUDED.model, year = EXCLUDED.year,
		              plate_number = EXCLUDED.plate_number, image_url = EXCLUDED.image_url,
		              last_service_date = EXCLUDED.last_service_date,
		              next_service_due_date = EXCLUDED.next_service_due_date,
		              insurance_expiry_date = EXCLUDED.insurance_expiry_date,
		              road_tax_expiry_date = EXCLUDED.road_tax_expiry_date
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		v.InstructorID,
		v.Make,
		v.Model,
		v.Year,
		v.PlateNumber,
		v.ImageURL,
		v.LastServiceDate,
		v.NextServiceDueDate,
		v.InsuranceExpiry,
		v.RoadTaxExpiry,
	).Scan(&v.ID, &v.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert vehicle: %w", err)
	}

	return nil
}

// GetByInstructorID получает машину инструктора
func (r *VehicleRepository) GetByInstructorID(ctx context.Context, instructorID int64) (*model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE instructor_id = $1`

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, instructorID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle by instructor: %w", err)
	}

	return v, nil
}

// AddFuelLog добавляет запись о заправке
func (r *VehicleRepository) AddFuelLog(ctx context.Context, entry *model.FuelLog) error {
	query := `
		INSERT INTO fuel_logs (vehicle_id, date, liters, cost, odometer_km)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		entry.VehicleID,
		entry.Date,
		entry.Liters,
		entry.Cost,
		entry.OdometerKm,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("add fuel log: %w", err)
	}

	return nil
}

// GetFuelLogs получает записи о заправках машины
func (r *VehicleRepository) GetFuelLogs(ctx context.Context, vehicleID int64) ([]*model.FuelLog, error) {
	query := `
		SELECT id, vehicle_id, date, liters, cost, odometer_km, created_at
		FROM fuel_logs
		WHERE vehicle_id = $1
		ORDER BY date DESC
	`

	rows, err := r.pool.Query(ctx, query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("get fuel logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.FuelLog
	for rows.Next() {
		var entry model.FuelLog
		err := rows.Scan(
			&entry.ID,
			&entry.VehicleID,
			&entry.Date,
			&entry.Liters,
			&entry.Cost,
			&entry.OdometerKm,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fuel log: %w", err)
		}
		logs = append(logs, &entry)
	}

	return logs, nil
}

// AddMaintenanceLog добавляет запись об обслуживании
func (r *VehicleRepository) AddMaintenanceLog(ctx context.Context, entry *model.MaintenanceLog) error {
	query := `
		INSERT INTO maintenance_logs (vehicle_id, date, description, cost, odometer_km)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		entry.VehicleID,
		entry.Date,
		entry.Description,
		entry.Cost,
		entry.OdometerKm,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("add maintenance log: %w", err)
	}

	return nil
}

// GetMaintenanceLogs получает записи об обслуживании машины
func (r *VehicleRepository) GetMaintenanceLogs(ctx context.Context, vehicleID int64) ([]*model.MaintenanceLog, error) {
	query := `
		SELECT id, vehicle_id, date, description, cost, odometer_km, created_at
		FROM maintenance_logs
		WHERE vehicle_id = $1
		ORDER BY date DESC
	`

	rows, err := r.pool.Query(ctx, query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("get maintenance logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.MaintenanceLog
	for rows.Next() {
		var entry model.MaintenanceLog
		err := rows.Scan(
			&entry.ID,
			&entry.VehicleID,
			&entry.Date,
			&entry.Description,
			&entry.Cost,
			&entry.OdometerKm,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance log: %w", err)
		}
		logs = append(logs, &entry)
	}

	return logs, nil
}
