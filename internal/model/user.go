package model

import "time"

type UserRole string

const (
	RoleInstructor UserRole = "instructor"
	RoleStudent    UserRole = "student"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"  // Ожидает одобрения инструктора
	ApprovalApproved ApprovalStatus = "approved" // Допущен к записи на занятия
	ApprovalRejected ApprovalStatus = "rejected" // Отклонён, запись заблокирована
)

type User struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      UserRole       `json:"role"`
	Status    ApprovalStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// IsInstructor проверяет, является ли пользователь инструктором
func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor
}

// IsStudent проверяет, является ли пользователь студентом
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// CanBook проверяет, допущен ли студент к записи на занятия
func (u *User) CanBook() bool {
	return u.Role == RoleStudent && u.Status == ApprovalApproved
}
