package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drivehub/driveschool/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrNotEligible, http.StatusForbidden},
		{service.ErrNotInstructor, http.StatusForbidden},
		{service.ErrSlotFull, http.StatusConflict},
		{service.ErrDuplicateBooking, http.StatusConflict},
		{service.ErrSlotNotEmpty, http.StatusConflict},
		{service.ErrSlotNotFound, http.StatusNotFound},
		{service.ErrStudentNotFound, http.StatusNotFound},
		{service.ErrBookingNotFound, http.StatusNotFound},
		{service.ErrVehicleNotFound, http.StatusNotFound},
		{service.ErrLicenseNotFound, http.StatusNotFound},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrLockTimeout, http.StatusServiceUnavailable},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()

			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

// Обёрнутые ошибки тоже должны попадать в нужную ветку
func TestWriteError_WrappedError(t *testing.T) {
	rec := httptest.NewRecorder()

	writeError(rec, fmt.Errorf("reserve seat: %w", service.ErrSlotFull))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCurrentUserID(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    int64
		wantErr bool
	}{
		{"valid id", "42", 42, false},
		{"missing header", "", 0, true},
		{"not a number", "abc", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/student/slots", nil)
			if tt.header != "" {
				r.Header.Set(identityHeader, tt.header)
			}

			id, err := currentUserID(r)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestApprovalStatus_Unauthorized(t *testing.T) {
	h := &Handler{}

	rec := httptest.NewRecorder()
	h.ApprovalStatus(rec, httptest.NewRequest(http.MethodGet, "/api/student/status", nil), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	})

	handler := Recovery(zap.NewNop())(panicking)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	handler := RequestLogger(zap.NewNop())(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
