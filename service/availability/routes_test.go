package availability

import (
	"encoding/json"
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

	professional := models.Professional{Name: "João Silva", Slug: "joao-silva"}
	require.NoError(t, db.Create(&professional).Error)

	for _, entry := range models.DefaultWeeklySchedule(professional.ID) {
		e := entry
		require.NoError(t, db.Create(&e).Error)
	}

	service := models.Service{
		ProfessionalID: professional.ID,
		Name:           "Corte Masculino",
		Duration:       60,
		Price:          60,
	}
	require.NoError(t, db.Create(&service).Error)

	return professional, service
}

func testRouter(h *AvailabilityHandler) *mux.Router {
	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/api/v1").Subrouter())
	return router
}

type slotsResponse struct {
	Date     string   `json:"date"`
	Service  string   `json:"service"`
	Duration int      `json:"duration"`
	Slots    []string `json:"slots"`
}

func TestGetAvailableSlots(t *testing.T) {
	db := setupTestDB(t)
	professional, service := seedProfessional(t, db)

	handler := NewAvailabilityHandler(db)
	handler.now = func() time.Time {
		// Midnight before the target Monday, reference zone.
		return time.Date(2026, 9, 7, 0, 0, 0, 0, handler.loc)
	}
	router := testRouter(handler)

	url := "/api/v1/professionals/1/availability?date=2026-09-07&service_id=1"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response slotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "2026-09-07", response.Date)
	assert.Equal(t, service.Name, response.Service)
	assert.Equal(t, 60, response.Duration)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "17:00"}, response.Slots)

	// Booking 10:00 removes it from the next read.
	require.NoError(t, db.Create(&models.Appointment{
		ProfessionalID: professional.ID,
		Reference:      "ref-1",
		Date:           "2026-09-07",
		Time:           "10:00",
		ServiceName:    service.Name,
		ClientName:     "Ana",
		Status:         models.StatusConfirmed,
	}).Error)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotContains(t, response.Slots, "10:00")
	assert.Contains(t, response.Slots, "11:00")
}

func TestGetAvailableSlotsClosedSpecialDate(t *testing.T) {
	db := setupTestDB(t)
	professional, _ := seedProfessional(t, db)

	require.NoError(t, db.Create(&models.SpecialDate{
		ProfessionalID: professional.ID,
		Date:           "2026-09-07",
		Closed:         true,
		Note:           "feriado",
	}).Error)

	handler := NewAvailabilityHandler(db)
	handler.now = func() time.Time {
		return time.Date(2026, 9, 1, 0, 0, 0, 0, handler.loc)
	}
	router := testRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/professionals/1/availability?date=2026-09-07&service_id=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response slotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Empty(t, response.Slots)
	assert.NotNil(t, response.Slots)
}

func TestGetAvailableSlotsValidation(t *testing.T) {
	db := setupTestDB(t)
	seedProfessional(t, db)

	handler := NewAvailabilityHandler(db)
	router := testRouter(handler)

	tests := []struct {
		name     string
		url      string
		expected int
	}{
		{"bad professional id", "/api/v1/professionals/abc/availability?date=2026-09-07&service_id=1", http.StatusBadRequest},
		{"bad date", "/api/v1/professionals/1/availability?date=07-09-2026&service_id=1", http.StatusBadRequest},
		{"missing service", "/api/v1/professionals/1/availability?date=2026-09-07&service_id=99", http.StatusNotFound},
		{"unknown professional", "/api/v1/professionals/99/availability?date=2026-09-07&service_id=1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}
