package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/wennsouza/marcai-server/cmd/models"
)

type ReviewHandler struct {
	db *gorm.DB
}

func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

func (h *ReviewHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/reviews", h.CreateReview).Methods("POST")
	router.HandleFunc("/professionals/{professionalId}/reviews", h.GetProfessionalReviews).Methods("GET")
}

// CreateReview accepts the appointment reference from the public review link.
// One review per appointment; the professional's rating aggregate is updated
// in the same transaction.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var reviewRequest struct {
		AppointmentReference string  `json:"appointment_reference"`
		Rating               float64 `json:"rating"`
		Comment              string  `json:"comment"`
	}

	if err := json.NewDecoder(r.Body).Decode(&reviewRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if reviewRequest.Rating < 1 || reviewRequest.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.Where("reference = ?", reviewRequest.AppointmentReference).
		First(&appointment).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	if appointment.Status != models.StatusCompleted {
		http.Error(w, "Only completed appointments can be reviewed", http.StatusUnprocessableEntity)
		return
	}

	var existing models.Review
	result := h.db.Where("appointment_id = ?", appointment.ID).First(&existing)
	if result.Error == nil {
		http.Error(w, "Appointment already reviewed", http.StatusConflict)
		return
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	var professional models.Professional
	if err := h.db.First(&professional, appointment.ProfessionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	review := models.Review{
		ProfessionalID: appointment.ProfessionalID,
		AppointmentID:  appointment.ID,
		ClientName:     appointment.ClientName,
		Rating:         reviewRequest.Rating,
		Comment:        reviewRequest.Comment,
	}

	tx := h.db.Begin()
	if err := tx.Create(&review).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating review", http.StatusInternalServerError)
		return
	}

	newTotal := professional.TotalReviews + 1
	newAverage := (professional.AverageRating*float64(professional.TotalReviews) + reviewRequest.Rating) / float64(newTotal)

	if err := tx.Model(&professional).Updates(map[string]interface{}{
		"average_rating": newAverage,
		"total_reviews":  newTotal,
	}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating rating", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error creating review", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(review)
}

func (h *ReviewHandler) GetProfessionalReviews(w http.ResponseWriter, r *http.Request) {
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
	pageSize := 20

	query := h.db.Model(&models.Review{}).Where("professional_id = ?", professionalID)

	var total int64
	query.Count(&total)

	var reviews []models.Review
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		http.Error(w, "Error retrieving reviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"reviews":     reviews,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
