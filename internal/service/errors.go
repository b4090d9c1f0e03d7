package service

import "errors"

// Бизнес-исходы бронирования. Возвращаются вызывающему как есть и
// никогда не ретраятся автоматически.
var (
	ErrSlotFull         = errors.New("slot is full")
	ErrDuplicateBooking = errors.New("slot already booked by this student")
	ErrNotEligible      = errors.New("student is not eligible to book")
	ErrSlotNotEmpty     = errors.New("slot has active bookings")
)

// Ошибки отсутствия данных: проверяются до захвата блокировок.
var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrLicenseNotFound = errors.New("license application not found")
	ErrUserNotFound    = errors.New("user not found")
)

// ErrLockTimeout означает, что ожидание блокировки строки слота превысило
// настроенный предел. Транзиентный исход, вызывающий может повторить с бэкоффом.
var ErrLockTimeout = errors.New("timed out waiting for slot lock")

// ErrNotInstructor возвращается, когда операция требует роль инструктора
var ErrNotInstructor = errors.New("instructor access only")
