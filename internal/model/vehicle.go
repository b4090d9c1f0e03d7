package model

import "time"

type Vehicle struct {
	ID                 int64      `json:"id"`
	InstructorID       int64      `json:"instructor_id"`
	Make               string     `json:"make"`
	Model              string     `json:"model"`
	Year               int        `json:"year"`
	PlateNumber        string     `json:"plate_number"`
	ImageURL           string     `json:"image_url"`
	LastServiceDate    *time.Time `json:"last_service_date"`
	NextServiceDueDate *time.Time `json:"next_service_due_date"`
	InsuranceExpiry    *time.Time `json:"insurance_expiry_date"`
	RoadTaxExpiry      *time.Time `json:"road_tax_expiry_date"`
	CreatedAt          time.Time  `json:"created_at"`
}

type FuelLog struct {
	ID         int64     `json:"id"`
	VehicleID  int64     `json:"vehicle_id"`
	Date       time.Time `json:"date"`
	Liters     float64   `json:"liters"`
	Cost       float64   `json:"cost"`
	OdometerKm float64   `json:"odometer_km"`
	CreatedAt  time.Time `json:"created_at"`
}

type MaintenanceLog struct {
	ID          int64     `json:"id"`
	VehicleID   int64     `json:"vehicle_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Cost        float64   `json:"cost"`
	OdometerKm  float64   `json:"odometer_km"`
	CreatedAt   time.Time `json:"created_at"`
}
