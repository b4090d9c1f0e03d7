package service

import (
	"context"
	"fmt"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository"
	"go.uber.org/zap"
)

type VehicleService struct {
	vehicleRepo *repository.VehicleRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

func NewVehicleService(
	vehicleRepo *repository.VehicleRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Save сохраняет машину инструктора (одна машина на инструктора)
func (s *VehicleService) Save(ctx context.Context, instructorID int64, v *model.Vehicle) (*model.Vehicle, error) {
	instructor, err := s.userRepo.GetByID(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil || !instructor.IsInstructor() {
		return nil, ErrNotInstructor
	}

	v.InstructorID = instructorID
	if err := s.vehicleRepo.Upsert(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("Vehicle saved",
		zap.Int64("instructor_id", instructorID),
		zap.String("plate_number", v.PlateNumber),
	)

	return v, nil
}

// Get получает машину инструктора
func (s *VehicleService) Get(ctx context.Context, instructorID int64) (*model.Vehicle, error) {
	v, err := s.vehicleRepo.GetByInstructorID(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVehicleNotFound
	}

	return v, nil
}

// AddFuelLog добавляет запись о заправке машины инструктора
func (s *VehicleService) AddFuelLog(ctx context.Context, instructorID int64, entry *model.FuelLog) (*model.FuelLog, error) {
	v, err := s.Get(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	entry.VehicleID = v.ID
	if err := s.vehicleRepo.AddFuelLog(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// FuelLogs получает записи о заправках машины инструктора
func (s *VehicleService) FuelLogs(ctx context.Context, instructorID int64) ([]*model.FuelLog, error) {
	v, err := s.Get(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	return s.vehicleRepo.GetFuelLogs(ctx, v.ID)
}

// AddMaintenanceLog добавляет запись об обслуживании машины инструктора
func (s *VehicleService) AddMaintenanceLog(ctx context.Context, instructorID int64, entry *model.MaintenanceLog) (*model.MaintenanceLog, error) {
	v, err := s.Get(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	entry.VehicleID = v.ID
	if err := s.vehicleRepo.AddMaintenanceLog(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// MaintenanceLogs получает записи об обслуживании машины инструктора
func (s *VehicleService) MaintenanceLogs(ctx context.Context, instructorID int64) ([]*model.MaintenanceLog, error) {
	v, err := s.Get(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	return s.vehicleRepo.GetMaintenanceLogs(ctx, v.ID)
}
