package professional

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/wennsouza/marcai-server/cmd/models"
)

type ProfessionalHandler struct {
	db *gorm.DB
}

func NewProfessionalHandler(db *gorm.DB) *ProfessionalHandler {
	return &ProfessionalHandler{db: db}
}

func (h *ProfessionalHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/professionals", h.CreateProfessional).Methods("POST")
	router.HandleFunc("/professionals", h.GetProfessionals).Methods("GET")
	router.HandleFunc("/professionals/search", h.SearchProfessionals).Methods("GET")
	router.HandleFunc("/professionals/slug/{slug}", h.GetProfessionalBySlug).Methods("GET")
	router.HandleFunc("/professionals/{id:[0-9]+}", h.GetProfessional).Methods("GET")
	router.HandleFunc("/professionals/{id:[0-9]+}", h.UpdateProfessional).Methods("PUT")
	router.HandleFunc("/professionals/{id:[0-9]+}", h.DeleteProfessional).Methods("DELETE")

	router.HandleFunc("/professionals/{id:[0-9]+}/services", h.CreateService).Methods("POST")
	router.HandleFunc("/professionals/{id:[0-9]+}/services", h.GetServices).Methods("GET")
	router.HandleFunc("/professionals/{id:[0-9]+}/services/{serviceId}", h.UpdateService).Methods("PUT")
	router.HandleFunc("/professionals/{id:[0-9]+}/services/{serviceId}", h.DeleteService).Methods("DELETE")
}

// CreateProfessional inserts the record and seeds the default weekly schedule
// in the same transaction, so a brand-new professional is immediately bookable.
func (h *ProfessionalHandler) CreateProfessional(w http.ResponseWriter, r *http.Request) {
	var professional models.Professional
	if err := json.NewDecoder(r.Body).Decode(&professional); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if professional.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	if professional.Slug == "" {
		professional.Slug = models.Slugify(professional.Name)
	}

	// Disambiguate slug collisions with a numeric suffix.
	base := professional.Slug
	for suffix := 2; ; suffix++ {
		var count int64
		h.db.Model(&models.Professional{}).Where("slug = ?", professional.Slug).Count(&count)
		if count == 0 {
			break
		}
		professional.Slug = fmt.Sprintf("%s-%d", base, suffix)
	}

	tx := h.db.Begin()
	if err := tx.Create(&professional).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating professional", http.StatusInternalServerError)
		return
	}

	for _, entry := range models.DefaultWeeklySchedule(professional.ID) {
		if err := tx.Create(&entry).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error seeding weekly schedule", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error creating professional", http.StatusInternalServerError)
		return
	}

	log.Info().Uint("professional_id", professional.ID).Str("slug", professional.Slug).
		Msg("professional created")

	h.db.Preload("WeeklySchedules").First(&professional, professional.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(professional)
}

func (h *ProfessionalHandler) GetProfessionals(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 20

	query := h.db.Model(&models.Professional{})
	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	query.Count(&total)

	var professionals []models.Professional
	if err := query.Preload("Services").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Order("average_rating DESC").Find(&professionals).Error; err != nil {
		http.Error(w, "Error retrieving professionals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"professionals": professionals,
		"total":         total,
		"page":          page,
		"page_size":     pageSize,
		"total_pages":   (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *ProfessionalHandler) SearchProfessionals(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, "Search query is required", http.StatusBadRequest)
		return
	}

	pattern := "%" + term + "%"
	var professionals []models.Professional
	if err := h.db.Preload("Services").
		Where("name ILIKE ? OR category ILIKE ? OR salon_name ILIKE ? OR location ILIKE ?",
			pattern, pattern, pattern, pattern).
		Limit(50).Find(&professionals).Error; err != nil {
		http.Error(w, "Error searching professionals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(professionals)
}

func (h *ProfessionalHandler) GetProfessional(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	var professional models.Professional
	if err := h.db.Preload("Services").Preload("WeeklySchedules").
		First(&professional, professionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(professional)
}

// GetProfessionalBySlug backs the public booking link (/p/{slug}).
func (h *ProfessionalHandler) GetProfessionalBySlug(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var professional models.Professional
	if err := h.db.Preload("Services").
		Where("slug = ?", vars["slug"]).First(&professional).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(professional)
}

func (h *ProfessionalHandler) UpdateProfessional(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	var updateData models.Professional
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var professional models.Professional
	if err := h.db.First(&professional, professionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	professional.Name = updateData.Name
	professional.Category = updateData.Category
	professional.Bio = updateData.Bio
	professional.SalonName = updateData.SalonName
	professional.Location = updateData.Location
	professional.WhatsApp = updateData.WhatsApp
	professional.AvatarURL = updateData.AvatarURL
	professional.Gallery = updateData.Gallery
	professional.ExpireDays = updateData.ExpireDays

	if err := h.db.Save(&professional).Error; err != nil {
		http.Error(w, "Error updating professional", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(professional)
}

func (h *ProfessionalHandler) DeleteProfessional(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	result := h.db.Select("Services", "WeeklySchedules", "SpecialDates", "Reviews").
		Delete(&models.Professional{Model: gorm.Model{ID: uint(professionalID)}})
	if result.Error != nil {
		http.Error(w, "Error deleting professional", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Professional deleted successfully",
	})
}

func (h *ProfessionalHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	var service models.Service
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if service.Name == "" || service.Duration <= 0 {
		http.Error(w, "Service name and a positive duration are required", http.StatusBadRequest)
		return
	}

	var professional models.Professional
	if err := h.db.First(&professional, professionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	service.ProfessionalID = uint(professionalID)
	if err := h.db.Create(&service).Error; err != nil {
		http.Error(w, "Error creating service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(service)
}

func (h *ProfessionalHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	var services []models.Service
	if err := h.db.Where("professional_id = ?", professionalID).
		Order("name ASC").Find(&services).Error; err != nil {
		http.Error(w, "Error retrieving services", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services)
}

func (h *ProfessionalHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}
	serviceID, err := strconv.ParseUint(vars["serviceId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var updateData models.Service
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if updateData.Name == "" || updateData.Duration <= 0 {
		http.Error(w, "Service name and a positive duration are required", http.StatusBadRequest)
		return
	}

	var service models.Service
	if err := h.db.Where("id = ? AND professional_id = ?", serviceID, professionalID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	service.Name = updateData.Name
	service.Duration = updateData.Duration
	service.Price = updateData.Price
	service.Category = updateData.Category

	if err := h.db.Save(&service).Error; err != nil {
		http.Error(w, "Error updating service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(service)
}

func (h *ProfessionalHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}
	serviceID, err := strconv.ParseUint(vars["serviceId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	result := h.db.Where("id = ? AND professional_id = ?", serviceID, professionalID).
		Delete(&models.Service{})
	if result.Error != nil {
		http.Error(w, "Error deleting service", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Service deleted successfully",
	})
}
