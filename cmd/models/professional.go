package models

import (
	"regexp"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Professional struct {
	gorm.Model
	UserID     uint   `gorm:"column:user_id;index" json:"user_id"`
	Name       string `gorm:"column:name;size:255;not null" json:"name"`
	Slug       string `gorm:"column:slug;size:255;uniqueIndex;not null" json:"slug"`
	Category   string `gorm:"column:category;size:100" json:"category"`
	Bio        string `gorm:"column:bio;type:text" json:"bio"`
	SalonName  string `gorm:"column:salon_name;size:255" json:"salon_name"`
	Location   string `gorm:"column:location;size:255" json:"location"`
	WhatsApp   string `gorm:"column:whatsapp;size:20" json:"whatsapp"`
	AvatarURL  string `gorm:"column:avatar_url;size:500" json:"avatar_url"`
	ExpireDays int    `gorm:"column:expire_days;default:30" json:"expire_days"`

	Gallery pq.StringArray `gorm:"type:text[];column:gallery" json:"gallery,omitempty"`

	AverageRating float64 `gorm:"column:average_rating;default:0" json:"average_rating"`
	TotalReviews  int     `gorm:"column:total_reviews;default:0" json:"total_reviews"`

	Services        []Service        `gorm:"foreignKey:ProfessionalID;constraint:OnDelete:CASCADE" json:"services,omitempty"`
	WeeklySchedules []WeeklySchedule `gorm:"foreignKey:ProfessionalID;constraint:OnDelete:CASCADE" json:"weekly_schedules,omitempty"`
	SpecialDates    []SpecialDate    `gorm:"foreignKey:ProfessionalID;constraint:OnDelete:CASCADE" json:"special_dates,omitempty"`
	Reviews         []Review         `gorm:"foreignKey:ProfessionalID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Professional) TableName() string {
	return "professionals"
}

type Service struct {
	gorm.Model
	ProfessionalID uint    `gorm:"column:professional_id;not null;index" json:"professional_id"`
	Name           string  `gorm:"column:name;size:255;not null" json:"name"`
	Duration       int     `gorm:"column:duration;not null" json:"duration"` // minutes
	Price          float64 `gorm:"column:price;not null" json:"price"`
	Category       string  `gorm:"column:category;size:100" json:"category"`

	Professional *Professional `gorm:"foreignKey:ProfessionalID" json:"-"`
}

type Review struct {
	gorm.Model
	ProfessionalID uint    `gorm:"column:professional_id;not null;index" json:"professional_id"`
	AppointmentID  uint    `gorm:"column:appointment_id;not null;uniqueIndex" json:"appointment_id"`
	ClientName     string  `gorm:"column:client_name;size:255" json:"client_name"`
	Rating         float64 `gorm:"column:rating;not null" json:"rating"`
	Comment        string  `gorm:"column:comment;type:text" json:"comment"`

	Professional *Professional `gorm:"foreignKey:ProfessionalID" json:"-"`
	Appointment  *Appointment  `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a URL-safe slug, stripping the accents
// common in pt-BR names ("João Silva" -> "joao-silva").
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer(
		"á", "a", "à", "a", "ã", "a", "â", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "õ", "o", "ô", "o",
		"ú", "u", "ü", "u",
		"ç", "c",
	)
	s = replacer.Replace(s)
	s = slugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DefaultWeeklySchedule returns the onboarding schedule for a new professional:
// Monday through Saturday 09:00-18:00 with lunch 12:00-13:00, Sunday disabled.
func DefaultWeeklySchedule(professionalID uint) []WeeklySchedule {
	schedules := make([]WeeklySchedule, 0, 7)
	for day := 0; day < 7; day++ {
		schedules = append(schedules, WeeklySchedule{
			ProfessionalID: professionalID,
			Day:            day,
			Enabled:        day != 0,
			Start:          "09:00",
			End:            "18:00",
			LunchEnabled:   day != 0,
			LunchStart:     "12:00",
			LunchEnd:       "13:00",
		})
	}
	return schedules
}
