package models

import (
	"gorm.io/gorm"
)

const (
	StatusPending      = "pending"
	StatusConfirmed    = "confirmed"
	StatusPreScheduled = "pre-scheduled"
	StatusCancelled    = "cancelled"
	StatusCompleted    = "completed"
)

// Appointment stores the service name as a plain string snapshot rather than a
// foreign key; the availability engine resolves its duration by name lookup
// against the professional's current service list.
type Appointment struct {
	gorm.Model
	ProfessionalID uint   `gorm:"column:professional_id;not null;index" json:"professional_id"`
	Reference      string `gorm:"column:reference;size:36;uniqueIndex" json:"reference"`
	Date           string `gorm:"column:date;size:10;not null;index" json:"date"` // "YYYY-MM-DD"
	Time           string `gorm:"column:time;size:5;not null" json:"time"`        // "HH:MM"
	ServiceName    string `gorm:"column:service_name;size:255;not null" json:"service_name"`
	ClientName     string `gorm:"column:client_name;size:255;not null" json:"client_name"`
	ClientWhatsApp string `gorm:"column:client_whatsapp;size:20" json:"client_whatsapp"`
	Status         string `gorm:"column:status;size:20;default:'pending'" json:"status"`

	Professional *Professional `gorm:"foreignKey:ProfessionalID" json:"professional,omitempty"`
}

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreScheduled, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransition enforces the appointment lifecycle: pending and pre-scheduled
// appointments can move anywhere, confirmed ones can complete or cancel, and
// cancelled/completed are terminal.
func CanTransition(from, to string) bool {
	if !ValidStatus(to) || from == to {
		return false
	}
	switch from {
	case StatusPending, StatusPreScheduled:
		return to != StatusPending
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}
