package model

import (
	"encoding/json"
	"time"
)

// LicenseApplication заявка студента на получение водительских прав
type LicenseApplication struct {
	ID                  int64           `json:"id"`
	StudentID           int64           `json:"student_id"`
	Status              string          `json:"status"`
	StudentDetails      json.RawMessage `json:"student_details"` // сырой jsonb, структура задаётся клиентом
	LicenseNumber       string          `json:"license_number"`
	CertificateIssuedAt *time.Time      `json:"certificate_issued_at"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Статусы заявки
const (
	LicenseStatusApplied    = "applied"
	LicenseStatusTestPassed = "test_passed"
	LicenseStatusCertIssued = "certificate_issued"
	LicenseStatusLicensed   = "licensed"
)
