package availability

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/wennsouza/marcai-server/cmd/models"
	"github.com/wennsouza/marcai-server/service/metrics"
)

type AvailabilityHandler struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewAvailabilityHandler(db *gorm.DB) *AvailabilityHandler {
	loc, err := time.LoadLocation(ReferenceTimezone)
	if err != nil {
		log.Warn().Err(err).Str("zone", ReferenceTimezone).Msg("falling back to UTC")
		loc = time.UTC
	}
	return &AvailabilityHandler{db: db, loc: loc, now: time.Now}
}

func (h *AvailabilityHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/professionals/{professionalId}/availability", h.GetAvailableSlots).Methods("GET")
}

// GetAvailableSlots answers ?date=YYYY-MM-DD&service_id=N with the bookable
// start times for that date. Re-run on every date or service change; slots are
// a point-in-time read, the authoritative conflict check happens at booking.
func (h *AvailabilityHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["professionalId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	date := r.URL.Query().Get("date")
	if _, err := time.Parse(DateLayout, date); err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	serviceID, err := strconv.ParseUint(r.URL.Query().Get("service_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var professional models.Professional
	if err := h.db.Preload("Services").Preload("WeeklySchedules").First(&professional, professionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	var service *models.Service
	for i := range professional.Services {
		if professional.Services[i].ID == uint(serviceID) {
			service = &professional.Services[i]
			break
		}
	}
	if service == nil {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	var specials []models.SpecialDate
	if err := h.db.Where("professional_id = ? AND date = ?", professionalID, date).
		Find(&specials).Error; err != nil {
		http.Error(w, "Error retrieving special dates", http.StatusInternalServerError)
		return
	}

	var booked []models.Appointment
	if err := h.db.Where("professional_id = ? AND date = ? AND status != ?",
		professionalID, date, models.StatusCancelled).
		Find(&booked).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	slots := ComputeSlots(
		professional.WeeklySchedules,
		specials,
		professional.Services,
		date,
		service.Duration,
		booked,
		h.now().In(h.loc),
	)
	if slots == nil {
		slots = []string{}
	}
	metrics.SlotQueriesTotal.Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"date":     date,
		"service":  service.Name,
		"duration": service.Duration,
		"slots":    slots,
	})
}
