package controller

import (
	"net/http"

	"github.com/drivehub/driveschool/internal/service"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Handler связывает HTTP-поверхность с сервисным слоем
type Handler struct {
	bookings *service.BookingService
	slots    *service.SlotService
	students *service.StudentService
	licenses *service.LicenseService
	vehicles *service.VehicleService
	logger   *zap.Logger
}

func NewHandler(
	bookings *service.BookingService,
	slots *service.SlotService,
	students *service.StudentService,
	licenses *service.LicenseService,
	vehicles *service.VehicleService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bookings: bookings,
		slots:    slots,
		students: students,
		licenses: licenses,
		vehicles: vehicles,
		logger:   logger,
	}
}

// Routes собирает маршруты API и оборачивает их в middleware
func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	// Студент
	router.POST("/api/register", h.Register)
	router.GET("/api/student/status", h.ApprovalStatus)
	router.GET("/api/student/slots", h.ListAvailableSlots)
	router.POST("/api/student/book", h.Book)
	router.POST("/api/student/cancel", h.CancelBooking)
	router.GET("/api/student/history", h.StudentHistory)
	router.GET("/api/student/progress", h.StudentProgress)
	router.POST("/api/license/apply", h.LicenseApply)
	router.GET("/api/license/status", h.LicenseStatus)

	// Инструктор
	router.GET("/api/instructor/slots", h.InstructorSchedule)
	router.POST("/api/instructor/slots", h.CreateSlots)
	router.PATCH("/api/instructor/slots/:id", h.UpdateSlotStatus)
	router.DELETE("/api/instructor/slots/:id", h.DeleteSlot)
	router.PUT("/api/instructor/booking/update", h.UpdateBooking)
	router.GET("/api/instructor/stats", h.Stats)
	router.GET("/api/instructor/pending-students", h.PendingStudents)
	router.GET("/api/instructor/students", h.Students)
	router.POST("/api/instructor/approve-student", h.ApproveStudent)
	router.DELETE("/api/instructor/student/:id", h.DeleteStudent)
	router.PUT("/api/instructor/license", h.LicenseAdvance)
	router.GET("/api/instructor/vehicle", h.GetVehicle)
	router.POST("/api/instructor/vehicle", h.SaveVehicle)
	router.GET("/api/instructor/vehicle/fuel", h.FuelLogs)
	router.POST("/api/instructor/vehicle/fuel", h.AddFuelLog)
	router.GET("/api/instructor/vehicle/maintenance", h.MaintenanceLogs)
	router.POST("/api/instructor/vehicle/maintenance", h.AddMaintenanceLog)

	var handler http.Handler = router
	handler = RequestLogger(h.logger)(handler)
	handler = Recovery(h.logger)(handler)

	return handler
}
