package model

import "time"

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled" // Занятие предстоит
	BookingStatusCompleted BookingStatus = "completed" // Занятие проведено
	BookingStatusMissed    BookingStatus = "missed"    // Студент не явился
)

type Booking struct {
	ID              int64         `json:"id"`
	SlotID          int64         `json:"slot_id"`
	StudentID       int64         `json:"student_id"`
	KmDriven        float64       `json:"km_driven"`
	Grade           string        `json:"grade"`
	InstructorNotes string        `json:"instructor_notes"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`

	// Дополнительные поля для истории студента (не из БД)
	StartTime      *time.Time `json:"start_time,omitempty"`
	InstructorName string     `json:"instructor_name,omitempty"`
}
