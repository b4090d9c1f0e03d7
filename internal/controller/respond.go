package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/drivehub/driveschool/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError отображает бизнес-исходы сервисного слоя на HTTP-статусы.
// Каждый отказ несёт конкретное сообщение, а не общий "failed".
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotEligible):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Your account is not approved for booking lessons"})
	case errors.Is(err, service.ErrNotInstructor):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Instructor access only"})
	case errors.Is(err, service.ErrSlotFull):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "Slot is full"})
	case errors.Is(err, service.ErrDuplicateBooking):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "You have already booked this slot"})
	case errors.Is(err, service.ErrSlotNotEmpty):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "Slot has active bookings"})
	case errors.Is(err, service.ErrSlotNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Slot not found"})
	case errors.Is(err, service.ErrStudentNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Student not found"})
	case errors.Is(err, service.ErrBookingNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Booking not found"})
	case errors.Is(err, service.ErrVehicleNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Vehicle not found"})
	case errors.Is(err, service.ErrLicenseNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "License application not found"})
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "User not found"})
	case errors.Is(err, service.ErrLockTimeout):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Slot is busy, please retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}
