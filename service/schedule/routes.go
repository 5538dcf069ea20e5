package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/wennsouza/marcai-server/cmd/models"
)

type ScheduleHandler struct {
	db *gorm.DB
}

func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{db: db}
}

func (h *ScheduleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/professionals/{professionalId}/schedule", h.GetWeeklySchedule).Methods("GET")
	router.HandleFunc("/professionals/{professionalId}/schedule", h.UpdateWeeklySchedule).Methods("PUT")
	router.HandleFunc("/professionals/{professionalId}/special-dates", h.UpsertSpecialDate).Methods("POST")
	router.HandleFunc("/professionals/{professionalId}/special-dates", h.GetSpecialDates).Methods("GET")
	router.HandleFunc("/professionals/{professionalId}/special-dates/{id}", h.DeleteSpecialDate).Methods("DELETE")
}

func (h *ScheduleHandler) GetWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["professionalId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	var schedules []models.WeeklySchedule
	if err := h.db.Where("professional_id = ?", professionalID).
		Order("day ASC").Find(&schedules).Error; err != nil {
		http.Error(w, "Error retrieving schedule", http.StatusInternalServerError)
		return
	}

	if len(schedules) == 0 {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedules)
}

// UpdateWeeklySchedule replaces all seven weekday rows in one transaction.
func (h *ScheduleHandler) UpdateWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["professionalId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	var updated []models.WeeklySchedule
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(updated) != 7 {
		http.Error(w, "Schedule must contain exactly 7 weekday entries", http.StatusBadRequest)
		return
	}

	seen := make(map[int]bool, 7)
	for _, entry := range updated {
		if entry.Day < 0 || entry.Day > 6 || seen[entry.Day] {
			http.Error(w, "Schedule must contain each weekday 0-6 exactly once", http.StatusBadRequest)
			return
		}
		seen[entry.Day] = true

		if err := validateScheduleEntry(entry); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var professional models.Professional
	if err := h.db.First(&professional, professionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	tx := h.db.Begin()
	for _, entry := range updated {
		result := tx.Model(&models.WeeklySchedule{}).
			Where("professional_id = ? AND day = ?", professionalID, entry.Day).
			Updates(map[string]interface{}{
				"enabled":       entry.Enabled,
				"start":         entry.Start,
				"end":           entry.End,
				"lunch_enabled": entry.LunchEnabled,
				"lunch_start":   entry.LunchStart,
				"lunch_end":     entry.LunchEnd,
			})
		if result.Error != nil {
			tx.Rollback()
			http.Error(w, "Error updating schedule", http.StatusInternalServerError)
			return
		}
		if result.RowsAffected == 0 {
			entry.ProfessionalID = uint(professionalID)
			if err := tx.Create(&entry).Error; err != nil {
				tx.Rollback()
				http.Error(w, "Error updating schedule", http.StatusInternalServerError)
				return
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error updating schedule", http.StatusInternalServerError)
		return
	}

	var schedules []models.WeeklySchedule
	h.db.Where("professional_id = ?", professionalID).Order("day ASC").Find(&schedules)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedules)
}

// UpsertSpecialDate applies last-write-wins per (professional, date), keeping
// at most one override row per calendar date.
func (h *ScheduleHandler) UpsertSpecialDate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["professionalId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	var special models.SpecialDate
	if err := json.NewDecoder(r.Body).Decode(&special); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := time.Parse("2006-01-02", special.Date); err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if !special.Closed && special.Start != "" && special.End != "" {
		start, err1 := parseClock(special.Start)
		end, err2 := parseClock(special.End)
		if err1 != nil || err2 != nil || !start.Before(end) {
			http.Error(w, "Override start must be before end (HH:MM)", http.StatusBadRequest)
			return
		}
	}

	var professional models.Professional
	if err := h.db.First(&professional, professionalID).Error; err != nil {
		http.Error(w, "Professional not found", http.StatusNotFound)
		return
	}

	var existing models.SpecialDate
	result := h.db.Where("professional_id = ? AND date = ?", professionalID, special.Date).First(&existing)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if result.Error == nil {
		existing.Closed = special.Closed
		existing.Start = special.Start
		existing.End = special.End
		existing.Note = special.Note
		if err := h.db.Save(&existing).Error; err != nil {
			http.Error(w, "Error saving special date", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(existing)
		return
	}

	special.ProfessionalID = uint(professionalID)
	if err := h.db.Create(&special).Error; err != nil {
		http.Error(w, "Error saving special date", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(special)
}

func (h *ScheduleHandler) GetSpecialDates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["professionalId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	query := h.db.Where("professional_id = ?", professionalID)
	if from := r.URL.Query().Get("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	var specials []models.SpecialDate
	if err := query.Order("date ASC").Find(&specials).Error; err != nil {
		http.Error(w, "Error retrieving special dates", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(specials)
}

func (h *ScheduleHandler) DeleteSpecialDate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseUint(vars["professionalId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid professional ID", http.StatusBadRequest)
		return
	}

	specialID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid special date ID", http.StatusBadRequest)
		return
	}

	result := h.db.Where("id = ? AND professional_id = ?", specialID, professionalID).
		Delete(&models.SpecialDate{})
	if result.Error != nil {
		http.Error(w, "Error deleting special date", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Special date not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Special date deleted successfully",
	})
}

func validateScheduleEntry(entry models.WeeklySchedule) error {
	if !entry.Enabled {
		return nil
	}

	start, err := parseClock(entry.Start)
	if err != nil {
		return fmt.Errorf("day %d: invalid start time", entry.Day)
	}
	end, err := parseClock(entry.End)
	if err != nil {
		return fmt.Errorf("day %d: invalid end time", entry.Day)
	}
	if !start.Before(end) {
		return fmt.Errorf("day %d: start must be before end", entry.Day)
	}

	if entry.LunchEnabled {
		lunchStart, err := parseClock(entry.LunchStart)
		if err != nil {
			return fmt.Errorf("day %d: invalid lunch start", entry.Day)
		}
		lunchEnd, err := parseClock(entry.LunchEnd)
		if err != nil {
			return fmt.Errorf("day %d: invalid lunch end", entry.Day)
		}
		if !lunchStart.Before(lunchEnd) {
			return fmt.Errorf("day %d: lunch start must be before lunch end", entry.Day)
		}
		if lunchStart.Before(start) || lunchEnd.After(end) {
			return fmt.Errorf("day %d: lunch must fall within opening hours", entry.Day)
		}
	}
	return nil
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}
