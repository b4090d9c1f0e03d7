package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/drivehub/driveschool/internal/service"
	"github.com/julienschmidt/httprouter"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Register регистрирует нового студента (статус pending до одобрения)
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeBadRequest(w, "Name and email are required")
		return
	}

	user, err := h.students.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ApprovalStatus отдаёт статус одобрения текущего студента
func (h *Handler) ApprovalStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	studentID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	status, err := h.students.GetApprovalStatus(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// ListAvailableSlots отдаёт слоты со свободными местами
func (h *Handler) ListAvailableSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := currentUserID(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	slots, err := h.bookings.ListAvailableSlots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if slots == nil {
		slots = []*model.Slot{}
	}

	writeJSON(w, http.StatusOK, slots)
}

// Book записывает студента на слот.
//
// Ограниченный повтор с бэкоффом выполняется только на ErrLockTimeout.
// Бизнес-отказы (слот заполнен, дубль) финальны и отдаются сразу.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	studentID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req struct {
		SlotID int64 `json:"slotId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SlotID <= 0 {
		writeBadRequest(w, "Slot ID is required")
		return
	}

	var (
		slot    *model.Slot
		booking *model.Booking
	)

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(50*time.Millisecond))
	err = retry.Do(r.Context(), backoff, func(ctx context.Context) error {
		slot, booking, err = h.bookings.Book(ctx, studentID, req.SlotID)
		if errors.Is(err, service.ErrLockTimeout) {
			h.logger.Warn("Retrying after lock timeout",
				zap.Int64("slot_id", req.SlotID),
				zap.Int64("student_id", studentID),
			)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slot":    slot,
		"booking": booking,
	})
}

// CancelBooking снимает запись студента со слота
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	studentID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req struct {
		SlotID int64 `json:"slotId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SlotID <= 0 {
		writeBadRequest(w, "Slot ID is required")
		return
	}

	slot, err := h.bookings.CancelBooking(r.Context(), studentID, req.SlotID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// StudentHistory отдаёт историю занятий студента
func (h *Handler) StudentHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	studentID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	bookings, err := h.bookings.StudentHistory(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	writeJSON(w, http.StatusOK, bookings)
}

// StudentProgress отдаёт сводку обучения студента
func (h *Handler) StudentProgress(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	studentID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	progress, err := h.bookings.StudentProgress(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// LicenseApply подаёт заявку студента на права
func (h *Handler) LicenseApply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	studentID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req struct {
		StudentDetails json.RawMessage `json:"studentDetails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	app, err := h.licenses.Apply(r.Context(), studentID, req.StudentDetails)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

// LicenseStatus отдаёт состояние заявки студента
func (h *Handler) LicenseStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	studentID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	app, err := h.licenses.Status(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}
