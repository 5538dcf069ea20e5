package appointment

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/wennsouza/marcai-server/cmd/models"
	"github.com/wennsouza/marcai-server/service/availability"
	"github.com/wennsouza/marcai-server/service/metrics"
)

type AppointmentHandler struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	loc, err := time.LoadLocation(availability.ReferenceTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &AppointmentHandler{db: db, loc: loc, now: time.Now}
}

func (h *AppointmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/appointments/book", h.BookAppointment).Methods("POST")
	router.HandleFunc("/appointments/{id}", h.GetAppointment).Methods("GET")
	router.HandleFunc("/appointments/{id}", h.DeleteAppointment).Methods("DELETE")
	router.HandleFunc("/appointments/{id}/status", h.UpdateStatus).Methods("PATCH")
	router.HandleFunc("/appointments/reference/{reference}", h.GetAppointmentByReference).Methods("GET")
	router.HandleFunc("/appointments/professional/{professionalId}", h.GetProfessionalAppointments).Methods("GET")
	router.HandleFunc("/appointments/client/{whatsapp}", h.GetClientAppointments).Methods("GET")
}

// BookAppointment creates a pending appointment after re-running the slot
// computation: the requested time must still be bookable at write time. This
// is a read-then-write check, not a serialized reservation; two clients racing
// for the same slot are resolved by whoever commits first being visible to the
// later recomputation.
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var bookingRequest struct {
		ProfessionalID uint   `json:"professional_id"`
		ServiceID      uint   `json:"service_id"`
		Date           string `json:"date"`
		Time           string `json:"time"`
		ClientName     string `json:"client_name"`
		ClientWhatsApp string `json:"client_whatsapp"`
	}

	if err := json.NewDecoder(r.Body).Decode(&bookingRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if bookingRequest.ClientName == "" {
		http.Error(w, "Client name is required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse(availability.DateLayout, bookingRequest.Date); err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("15:04", bookingRequest.Time); err != nil {
		http.Error(w, "Invalid time format. Use HH:MM", http.StatusBadRequest)
		return
	}

	var professional models.Professional
	if err := h.db.Preload("Services").Preload("WeeklySchedules").
		First(&professional, bookingRequest.ProfessionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	var service *models.Service
	for i := range professional.Services {
		if professional.Services[i].ID == bookingRequest.ServiceID {
			service = &professional.Services[i]
			break
		}
	}
	if service == nil {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	var specials []models.SpecialDate
	h.db.Where("professional_id = ? AND date = ?", professional.ID, bookingRequest.Date).Find(&specials)

	var booked []models.Appointment
	if err := h.db.Where("professional_id = ? AND date = ? AND status != ?",
		professional.ID, bookingRequest.Date, models.StatusCancelled).
		Find(&booked).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	slots := availability.ComputeSlots(
		professional.WeeklySchedules,
		specials,
		professional.Services,
		bookingRequest.Date,
		service.Duration,
		booked,
		h.now().In(h.loc),
	)

	bookable := false
	for _, slot := range slots {
		if slot == bookingRequest.Time {
			bookable = true
			break
		}
	}
	if !bookable {
		http.Error(w, "Time slot is no longer available", http.StatusConflict)
		return
	}

	appointment := models.Appointment{
		ProfessionalID: professional.ID,
		Reference:      uuid.NewString(),
		Date:           bookingRequest.Date,
		Time:           bookingRequest.Time,
		ServiceName:    service.Name,
		ClientName:     bookingRequest.ClientName,
		ClientWhatsApp: bookingRequest.ClientWhatsApp,
		Status:         models.StatusPending,
	}

	if err := h.db.Create(&appointment).Error; err != nil {
		http.Error(w, "Error creating appointment", http.StatusInternalServerError)
		return
	}

	metrics.AppointmentsBooked.Inc()
	log.Info().
		Uint("professional_id", professional.ID).
		Str("date", appointment.Date).
		Str("time", appointment.Time).
		Msg("appointment booked")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.Preload("Professional").First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

// GetAppointmentByReference serves the public review link, which carries the
// opaque reference instead of the row ID.
func (h *AppointmentHandler) GetAppointmentByReference(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var appointment models.Appointment
	if err := h.db.Preload("Professional").
		Where("reference = ?", vars["reference"]).First(&appointment).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) GetProfessionalAppointments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["professionalId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 50

	query := h.db.Model(&models.Appointment{}).Where("professional_id = ?", professionalID)

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		query = query.Where("date >= ?", startDate)
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		query = query.Where("date <= ?", endDate)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status != ?", models.StatusCancelled)
	}

	var total int64
	query.Count(&total)

	var appointments []models.Appointment
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("date ASC, time ASC").Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"appointments": appointments,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
		"total_pages":  (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *AppointmentHandler) GetClientAppointments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var appointments []models.Appointment
	if err := h.db.Preload("Professional").
		Where("client_whatsapp = ?", vars["whatsapp"]).
		Order("date DESC, time DESC").Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointments)
}

// UpdateStatus transitions the appointment lifecycle. Cancelling frees the
// slot immediately: cancelled rows are excluded from every availability read.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var statusRequest struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&statusRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !models.ValidStatus(statusRequest.Status) {
		http.Error(w, "Unknown status", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	if !models.CanTransition(appointment.Status, statusRequest.Status) {
		http.Error(w, "Invalid status transition", http.StatusUnprocessableEntity)
		return
	}

	if err := h.db.Model(&appointment).Update("status", statusRequest.Status).Error; err != nil {
		http.Error(w, "Error updating appointment", http.StatusInternalServerError)
		return
	}

	metrics.AppointmentTransitions.WithLabelValues(statusRequest.Status).Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.Appointment{}, appointmentID)
	if result.Error != nil {
		http.Error(w, "Error deleting appointment", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Appointment deleted successfully",
	})
}
