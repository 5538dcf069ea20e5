package appointment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wennsouza/marcai-server/cmd/models"
)

// 2026-09-07 is a Monday; the default schedule is open 09:00-18:00.
const targetDate = "2026-09-07"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Professional{},
		&models.Service{},
		&models.WeeklySchedule{},
		&models.SpecialDate{},
		&models.Appointment{},
	))
	return db
}

func seedProfessional(t *testing.T, db *gorm.DB) (models.Professional, models.Service) {
	t.Helper()

	professional := models.Professional{Name: "Ana Maria", Slug: "ana-maria"}
	require.NoError(t, db.Create(&professional).Error)

	for _, entry := range models.DefaultWeeklySchedule(professional.ID) {
		e := entry
		require.NoError(t, db.Create(&e).Error)
	}

	service := models.Service{
		ProfessionalID: professional.ID,
		Name:           "Coloração",
		Duration:       60,
		Price:          120,
	}
	require.NoError(t, db.Create(&service).Error)

	return professional, service
}

func newTestHandler(db *gorm.DB) (*AppointmentHandler, *mux.Router) {
	handler := NewAppointmentHandler(db)
	handler.now = func() time.Time {
		return time.Date(2026, 9, 1, 0, 0, 0, 0, handler.loc)
	}
	router := mux.NewRouter()
	handler.RegisterRoutes(router.PathPrefix("/api/v1").Subrouter())
	return handler, router
}

func bookRequest(professionalID, serviceID uint, slot string) *http.Request {
	body, _ := json.Marshal(map[string]interface{}{
		"professional_id": professionalID,
		"service_id":      serviceID,
		"date":            targetDate,
		"time":            slot,
		"client_name":     "Mariana Costa",
		"client_whatsapp": "+5511999990000",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/book", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestBookAppointment(t *testing.T) {
	db := setupTestDB(t)
	professional, service := seedProfessional(t, db)
	_, router := newTestHandler(db)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bookRequest(professional.ID, service.ID, "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, service.Name, created.ServiceName)
	assert.NotEmpty(t, created.Reference)

	// The same slot is rejected on the second attempt.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bookRequest(professional.ID, service.ID, "10:00"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// An overlapping start inside the occupied hour is rejected too, even
	// though it is not a generated slot boundary.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bookRequest(professional.ID, service.ID, "10:30"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A different free slot still books.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bookRequest(professional.ID, service.ID, "11:00"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestBookAppointmentLunchRejected(t *testing.T) {
	db := setupTestDB(t)
	professional, service := seedProfessional(t, db)
	_, router := newTestHandler(db)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bookRequest(professional.ID, service.ID, "12:00"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookAppointmentValidation(t *testing.T) {
	db := setupTestDB(t)
	professional, service := seedProfessional(t, db)
	_, router := newTestHandler(db)

	tests := []struct {
		name     string
		body     map[string]interface{}
		expected int
	}{
		{
			"missing client name",
			map[string]interface{}{"professional_id": professional.ID, "service_id": service.ID, "date": targetDate, "time": "10:00"},
			http.StatusBadRequest,
		},
		{
			"bad date",
			map[string]interface{}{"professional_id": professional.ID, "service_id": service.ID, "date": "07/09/2026", "time": "10:00", "client_name": "x"},
			http.StatusBadRequest,
		},
		{
			"bad time",
			map[string]interface{}{"professional_id": professional.ID, "service_id": service.ID, "date": targetDate, "time": "10h00", "client_name": "x"},
			http.StatusBadRequest,
		},
		{
			"unknown service",
			map[string]interface{}{"professional_id": professional.ID, "service_id": 99, "date": targetDate, "time": "10:00", "client_name": "x"},
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/book", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	db := setupTestDB(t)
	professional, service := seedProfessional(t, db)
	_, router := newTestHandler(db)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bookRequest(professional.ID, service.ID, "14:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	patch := func(id uint, status string) int {
		body, _ := json.Marshal(map[string]string{"status": status})
		req := httptest.NewRequest(http.MethodPatch,
			fmt.Sprintf("/api/v1/appointments/%d/status", id), bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, patch(created.ID, models.StatusConfirmed))
	assert.Equal(t, http.StatusUnprocessableEntity, patch(created.ID, models.StatusPending))
	assert.Equal(t, http.StatusOK, patch(created.ID, models.StatusCompleted))
	assert.Equal(t, http.StatusUnprocessableEntity, patch(created.ID, models.StatusCancelled))
	assert.Equal(t, http.StatusBadRequest, patch(created.ID, "archived"))
}

func TestCancelledSlotFreesImmediately(t *testing.T) {
	db := setupTestDB(t)
	professional, service := seedProfessional(t, db)
	_, router := newTestHandler(db)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bookRequest(professional.ID, service.ID, "15:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	body, _ := json.Marshal(map[string]string{"status": models.StatusCancelled})
	req := httptest.NewRequest(http.MethodPatch,
		fmt.Sprintf("/api/v1/appointments/%d/status", created.ID), bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bookRequest(professional.ID, service.ID, "15:00"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetProfessionalAppointmentsExcludesCancelled(t *testing.T) {
	db := setupTestDB(t)
	professional, service := seedProfessional(t, db)
	_, router := newTestHandler(db)

	appointments := []models.Appointment{
		{ProfessionalID: professional.ID, Reference: "r1", Date: targetDate, Time: "09:00", ServiceName: service.Name, ClientName: "a", Status: models.StatusConfirmed},
		{ProfessionalID: professional.ID, Reference: "r2", Date: targetDate, Time: "10:00", ServiceName: service.Name, ClientName: "b", Status: models.StatusCancelled},
	}
	for _, a := range appointments {
		appt := a
		require.NoError(t, db.Create(&appt).Error)
	}

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/appointments/professional/%d?start_date=%s&end_date=%s", professional.ID, targetDate, targetDate), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Appointments []models.Appointment `json:"appointments"`
		Total        int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.Total)
	require.Len(t, response.Appointments, 1)
	assert.Equal(t, "09:00", response.Appointments[0].Time)
}
