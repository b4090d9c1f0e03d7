package service

import (
	"context"
	"fmt"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository"
	"go.uber.org/zap"
)

type LicenseService struct {
	licenseRepo *repository.LicenseRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

func NewLicenseService(
	licenseRepo *repository.LicenseRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *LicenseService {
	return &LicenseService{
		licenseRepo: licenseRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Apply подаёт заявку студента на права. Повторная подача обновляет
// данные заявки, не создавая вторую (одна заявка на студента).
func (s *LicenseService) Apply(ctx context.Context, studentID int64, details []byte) (*model.LicenseApplication, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil || !student.IsStudent() {
		return nil, ErrStudentNotFound
	}

	if len(details) == 0 {
		details = []byte(`{}`)
	}

	app := &model.LicenseApplication{
		StudentID:      studentID,
		Status:         model.LicenseStatusApplied,
		StudentDetails: details,
	}

	if err := s.licenseRepo.Upsert(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("License application submitted",
		zap.Int64("student_id", studentID),
		zap.Int64("application_id", app.ID),
	)

	return app, nil
}

// Status получает заявку студента
func (s *LicenseService) Status(ctx context.Context, studentID int64) (*model.LicenseApplication, error) {
	app, err := s.licenseRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrLicenseNotFound
	}

	return app, nil
}

// Advance продвигает заявку по статусам выдачи (операция инструктора)
func (s *LicenseService) Advance(ctx context.Context, instructorID, applicationID int64, status, licenseNumber string) (*model.LicenseApplication, error) {
	instructor, err := s.userRepo.GetByID(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil || !instructor.IsInstructor() {
		return nil, ErrNotInstructor
	}

	issueCertificate := status == model.LicenseStatusCertIssued

	app, err := s.licenseRepo.UpdateProgress(ctx, applicationID, status, licenseNumber, issueCertificate)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrLicenseNotFound
	}

	s.logger.Info("License application advanced",
		zap.Int64("application_id", applicationID),
		zap.String("status", status),
	)

	return app, nil
}
