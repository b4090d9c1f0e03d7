package model

import "time"

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCompleted SlotStatus = "completed"
)

type Slot struct {
	ID           int64      `json:"id"`
	InstructorID int64      `json:"instructor_id"`
	StartTime    time.Time  `json:"start_time"`
	Status       SlotStatus `json:"status"`
	MaxStudents  int        `json:"max_students"`
	BookedCount  int        `json:"booked_count"`
	CreatedAt    time.Time  `json:"created_at"`

	// Дополнительные поля для выдачи (не из БД)
	InstructorName string        `json:"instructor_name,omitempty"`
	Students       []SlotStudent `json:"students,omitempty"`
}

// SlotStudent одна строка ростера слота: студент + его логбук по этому занятию
type SlotStudent struct {
	StudentID int64   `json:"id"`
	Name      string  `json:"name"`
	BookingID int64   `json:"booking_id"`
	KmDriven  float64 `json:"km_driven"`
	Grade     string  `json:"grade"`
	Notes     string  `json:"notes"`
	Status    string  `json:"status"`
}

// IsFull проверяет, исчерпана ли вместимость слота
func (s *Slot) IsFull() bool {
	return s.BookedCount >= s.MaxStudents
}
