package model

import "gorm.io/gorm"

// Appointment states.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment represents a booked slot in the clinic agenda. Date is a
// calendar date (YYYY-MM-DD) and StartTime/EndTime are wall-clock times
// (HH:MM); appointments never span midnight, so all overlap checks are
// scoped to a single date.
// @Description Appointment information
type Appointment struct {
	gorm.Model
	Date        string `json:"date" gorm:"column:date;index;not null" example:"2026-09-15"`
	StartTime   string `json:"start_time" gorm:"column:start_time;not null" example:"10:00"`
	EndTime     string `json:"end_time" gorm:"column:end_time;not null" example:"10:30"`
	UserID      uint   `json:"user_id" gorm:"column:user_id;index;not null" example:"3"`
	TreatmentID uint   `json:"treatment_id" gorm:"column:treatment_id;not null" example:"2"`
	State       string `json:"state" gorm:"column:state;default:pending" example:"pending"`
	Notes       string `json:"notes" gorm:"column:notes;type:text" example:"First visit"`
}

// ValidAppointmentState reports whether state is one of the enumerated
// appointment states. There is intentionally no transition graph: any state
// may follow any other.
func ValidAppointmentState(state string) bool {
	switch state {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}
