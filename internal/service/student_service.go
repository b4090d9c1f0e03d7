package service

import (
	"context"
	"fmt"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/repository"
	"go.uber.org/zap"
)

type StudentService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewStudentService(userRepo *repository.UserRepository, logger *zap.Logger) *StudentService {
	return &StudentService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register регистрирует нового студента. Студент создаётся в статусе
// pending и до одобрения инструктором может смотреть слоты, но не бронировать.
func (s *StudentService) Register(ctx context.Context, name, email string) (*model.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	user := &model.User{
		Name:   name,
		Email:  email,
		Role:   model.RoleStudent,
		Status: model.ApprovalPending,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Student registered",
		zap.Int64("student_id", user.ID),
		zap.String("email", email),
	)

	return user, nil
}

// GetApprovalStatus получает статус одобрения студента
func (s *StudentService) GetApprovalStatus(ctx context.Context, studentID int64) (model.ApprovalStatus, error) {
	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return "", fmt.Errorf("get student: %w", err)
	}
	if user == nil || !user.IsStudent() {
		return "", ErrStudentNotFound
	}

	return user.Status, nil
}

// PendingStudents получает студентов, ожидающих одобрения
func (s *StudentService) PendingStudents(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.GetStudentsByStatus(ctx, model.ApprovalPending)
}

// ApprovedStudents получает одобренных студентов
func (s *StudentService) ApprovedStudents(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.GetStudentsByStatus(ctx, model.ApprovalApproved)
}

// SetApproval одобряет или отклоняет студента. Операция доступна только
// инструктору.
func (s *StudentService) SetApproval(ctx context.Context, instructorID, studentID int64, approve bool) (*model.User, error) {
	instructor, err := s.userRepo.GetByID(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil || !instructor.IsInstructor() {
		return nil, ErrNotInstructor
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil || !student.IsStudent() {
		return nil, ErrStudentNotFound
	}

	newStatus := model.ApprovalRejected
	if approve {
		newStatus = model.ApprovalApproved
	}

	if err := s.userRepo.UpdateStatus(ctx, studentID, newStatus); err != nil {
		return nil, err
	}
	student.Status = newStatus

	s.logger.Info("Student approval updated",
		zap.Int64("student_id", studentID),
		zap.Int64("instructor_id", instructorID),
		zap.String("status", string(newStatus)),
	)

	return student, nil
}

// Delete удаляет студента вместе с бронированиями, возвращая занятые места
func (s *StudentService) Delete(ctx context.Context, instructorID, studentID int64) error {
	instructor, err := s.userRepo.GetByID(ctx, instructorID)
	if err != nil {
		return fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil || !instructor.IsInstructor() {
		return ErrNotInstructor
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}
	if student == nil || !student.IsStudent() {
		return ErrStudentNotFound
	}

	if err := s.userRepo.Delete(ctx, studentID); err != nil {
		return err
	}

	s.logger.Info("Student deleted",
		zap.Int64("student_id", studentID),
		zap.Int64("instructor_id", instructorID),
	)

	return nil
}
