package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/drivehub/driveschool/internal/model"
	"github.com/julienschmidt/httprouter"
)

// InstructorSchedule отдаёт расписание инструктора с ростером студентов
func (h *Handler) InstructorSchedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	slots, err := h.slots.InstructorSchedule(r.Context(), instructorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if slots == nil {
		slots = []*model.Slot{}
	}

	writeJSON(w, http.StatusOK, slots)
}

// CreateSlots создаёт слоты на присланные времена, пропуская дубли
func (h *Handler) CreateSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req struct {
		StartTimes  []time.Time `json:"startTimes"`
		MaxStudents int         `json:"maxStudents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.StartTimes) == 0 {
		writeBadRequest(w, "Start times are required")
		return
	}

	created, err := h.slots.CreateSlots(r.Context(), instructorID, req.StartTimes, req.MaxStudents)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdateSlotStatus меняет статус слота инструктора
func (h *Handler) UpdateSlotStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	slotID, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "Invalid slot ID")
		return
	}

	var req struct {
		Status model.SlotStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeBadRequest(w, "Status is required")
		return
	}

	slot, err := h.slots.UpdateStatus(r.Context(), slotID, instructorID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// DeleteSlot удаляет слот без активных бронирований
func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	slotID, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "Invalid slot ID")
		return
	}

	if err := h.slots.Delete(r.Context(), slotID, instructorID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateBooking записывает итоги занятия в журнал бронирования
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := currentUserID(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req struct {
		BookingID int64               `json:"bookingId"`
		KmDriven  float64             `json:"kmDriven"`
		Grade     string              `json:"grade"`
		Notes     string              `json:"notes"`
		Status    model.BookingStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookingID <= 0 {
		writeBadRequest(w, "Booking ID is required")
		return
	}

	booking, err := h.bookings.RecordLessonOutcome(r.Context(), req.BookingID, req.KmDriven, req.Grade, req.Notes, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// Stats отдаёт сводные показатели инструктора
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	stats, err := h.slots.Stats(r.Context(), instructorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// PendingStudents отдаёт студентов, ожидающих одобрения
func (h *Handler) PendingStudents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := currentUserID(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	students, err := h.students.PendingStudents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if students == nil {
		students = []*model.User{}
	}

	writeJSON(w, http.StatusOK, students)
}

// Students отдаёт одобренных студентов
func (h *Handler) Students(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := currentUserID(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	students, err := h.students.ApprovedStudents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if students == nil {
		students = []*model.User{}
	}

	writeJSON(w, http.StatusOK, students)
}

// ApproveStudent одобряет или отклоняет студента
func (h *Handler) ApproveStudent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req struct {
		StudentID int64  `json:"studentId"`
		Action    string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID <= 0 {
		writeBadRequest(w, "Missing studentId or action")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		writeBadRequest(w, `Invalid action. Must be "approve" or "reject"`)
		return
	}

	student, err := h.students.SetApproval(r.Context(), instructorID, req.StudentID, req.Action == "approve")
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"student": student,
	})
}

// DeleteStudent удаляет студента вместе с его бронированиями
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	studentID, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "Invalid student ID")
		return
	}

	if err := h.students.Delete(r.Context(), instructorID, studentID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// LicenseAdvance продвигает заявку на права (операция инструктора)
func (h *Handler) LicenseAdvance(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req struct {
		ApplicationID int64  `json:"applicationId"`
		Status        string `json:"status"`
		LicenseNumber string `json:"licenseNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ApplicationID <= 0 || req.Status == "" {
		writeBadRequest(w, "Application ID and status are required")
		return
	}

	app, err := h.licenses.Advance(r.Context(), instructorID, req.ApplicationID, req.Status, req.LicenseNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

// SaveVehicle сохраняет машину инструктора
func (h *Handler) SaveVehicle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var vehicle model.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if vehicle.Make == "" || vehicle.Model == "" || vehicle.PlateNumber == "" {
		writeBadRequest(w, "Make, model and plate number are required")
		return
	}

	saved, err := h.vehicles.Save(r.Context(), instructorID, &vehicle)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// GetVehicle отдаёт машину инструктора
func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	vehicle, err := h.vehicles.Get(r.Context(), instructorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

// AddFuelLog добавляет запись о заправке
func (h *Handler) AddFuelLog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var entry model.FuelLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	saved, err := h.vehicles.AddFuelLog(r.Context(), instructorID, &entry)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// FuelLogs отдаёт записи о заправках
func (h *Handler) FuelLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	logs, err := h.vehicles.FuelLogs(r.Context(), instructorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []*model.FuelLog{}
	}

	writeJSON(w, http.StatusOK, logs)
}

// AddMaintenanceLog добавляет запись об обслуживании
func (h *Handler) AddMaintenanceLog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var entry model.MaintenanceLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	saved, err := h.vehicles.AddMaintenanceLog(r.Context(), instructorID, &entry)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// MaintenanceLogs отдаёт записи об обслуживании
func (h *Handler) MaintenanceLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	instructorID, err := currentUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	logs, err := h.vehicles.MaintenanceLogs(r.Context(), instructorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []*model.MaintenanceLog{}
	}

	writeJSON(w, http.StatusOK, logs)
}
