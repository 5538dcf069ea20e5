package models

import (
	"gorm.io/gorm"
)

// WeeklySchedule holds the recurring opening hours for one weekday.
// Day follows time.Weekday numbering: 0 = Sunday .. 6 = Saturday.
type WeeklySchedule struct {
	gorm.Model
	ProfessionalID uint   `gorm:"column:professional_id;not null;uniqueIndex:idx_schedule_pro_day" json:"professional_id"`
	Day            int    `gorm:"column:day;not null;uniqueIndex:idx_schedule_pro_day" json:"day"`
	Enabled        bool   `gorm:"column:enabled;default:false" json:"enabled"`
	Start          string `gorm:"column:start;size:5" json:"start"` // "09:00"
	End            string `gorm:"column:end;size:5" json:"end"`
	LunchEnabled   bool   `gorm:"column:lunch_enabled;default:false" json:"lunch_enabled"`
	LunchStart     string `gorm:"column:lunch_start;size:5" json:"lunch_start"`
	LunchEnd       string `gorm:"column:lunch_end;size:5" json:"lunch_end"`

	Professional *Professional `gorm:"foreignKey:ProfessionalID" json:"-"`
}

func (WeeklySchedule) TableName() string {
	return "weekly_schedules"
}

// SpecialDate overrides the weekly schedule for one exact calendar date: either
// a full closure or custom opening hours. One row per (professional, date).
type SpecialDate struct {
	gorm.Model
	ProfessionalID uint   `gorm:"column:professional_id;not null;uniqueIndex:idx_special_pro_date" json:"professional_id"`
	Date           string `gorm:"column:date;size:10;not null;uniqueIndex:idx_special_pro_date" json:"date"` // "YYYY-MM-DD"
	Closed         bool   `gorm:"column:closed;default:false" json:"closed"`
	Start          string `gorm:"column:start;size:5" json:"start,omitempty"`
	End            string `gorm:"column:end;size:5" json:"end,omitempty"`
	Note           string `gorm:"column:note;type:text" json:"note,omitempty"`

	Professional *Professional `gorm:"foreignKey:ProfessionalID" json:"-"`
}

func (SpecialDate) TableName() string {
	return "special_dates"
}
