package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/wennsouza/marcai-server/cmd/models"
	"github.com/wennsouza/marcai-server/cmd/utils"
	"github.com/wennsouza/marcai-server/service/availability"
)

type DashboardHandler struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	loc, err := time.LoadLocation(availability.ReferenceTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &DashboardHandler{db: db, loc: loc, now: time.Now}
}

type DashboardStats struct {
	AppointmentsToday int64   `json:"appointments_today"`
	PendingTotal      int64   `json:"pending_total"`
	CompletedMonth    int64   `json:"completed_month"`
	NextAppointment   string  `json:"next_appointment,omitempty"`
	AverageRating     float64 `json:"average_rating"`
	TotalReviews      int     `json:"total_reviews"`
}

func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	dashboardRouter := router.PathPrefix("/dashboard").Subrouter()
	dashboardRouter.Use(utils.AuthMiddleware)
	dashboardRouter.HandleFunc("/professionals/{professionalId}/stats", h.GetProfessionalStats).Methods("GET")
}

// GetProfessionalStats feeds the professional's dashboard cards: today's
// agenda size, pending queue, completions this month, and the next booked
// time today. "Today" is resolved in the reference timezone.
func (h *DashboardHandler) GetProfessionalStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["professionalId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	var professional models.Professional
	if err := h.db.First(&professional, professionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	now := h.now().In(h.loc)
	today := now.Format(availability.DateLayout)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc).Format(availability.DateLayout)

	var stats DashboardStats
	stats.AverageRating = professional.AverageRating
	stats.TotalReviews = professional.TotalReviews

	h.db.Model(&models.Appointment{}).
		Where("professional_id = ? AND date = ? AND status != ?",
			professionalID, today, models.StatusCancelled).
		Count(&stats.AppointmentsToday)

	h.db.Model(&models.Appointment{}).
		Where("professional_id = ? AND status = ?", professionalID, models.StatusPending).
		Count(&stats.PendingTotal)

	h.db.Model(&models.Appointment{}).
		Where("professional_id = ? AND status = ? AND date >= ?",
			professionalID, models.StatusCompleted, monthStart).
		Count(&stats.CompletedMonth)

	var next models.Appointment
	if err := h.db.Where("professional_id = ? AND date = ? AND time > ? AND status != ?",
		professionalID, today, now.Format("15:04"), models.StatusCancelled).
		Order("time ASC").First(&next).Error; err == nil {
		stats.NextAppointment = next.Time
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
