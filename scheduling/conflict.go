// Package scheduling decides whether a candidate time range can be booked
// without overlapping an existing active appointment on the same date.
package scheduling

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ferreyrapanozzo/dental-clinic-api/model"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

// AppointmentsOnDate returns every appointment on the given calendar date
// ordered by start time. Appointments never span midnight, so scoping the
// query to one date bounds the comparison set.
func AppointmentsOnDate(db *gorm.DB, date string) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := db.Where("date = ?", date).Order("start_time ASC").Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments for %s: %w", date, err)
	}
	return appointments, nil
}

// HasConflict reports whether the candidate range [startTime, endTime) on
// date overlaps any non-cancelled appointment. excludeID, when non-zero,
// names an appointment to ignore so an update does not conflict with its own
// stored interval. The caller is responsible for having validated that
// startTime < endTime and that both are well-formed HH:MM values.
//
// The interval test is half-open: a slot ending exactly when another starts
// is not a conflict.
func HasConflict(db *gorm.DB, date, startTime, endTime string, excludeID uint) (bool, error) {
	appointments, err := AppointmentsOnDate(db, date)
	if err != nil {
		return false, err
	}

	candStart, err := util.CombineDateAndTime(date, startTime)
	if err != nil {
		return false, err
	}
	candEnd, err := util.CombineDateAndTime(date, endTime)
	if err != nil {
		return false, err
	}

	for _, appointment := range appointments {
		if excludeID != 0 && appointment.ID == excludeID {
			continue
		}
		// A cancelled slot frees its time range for reuse.
		if appointment.State == model.AppointmentCancelled {
			continue
		}

		existStart, err := util.CombineDateAndTime(date, appointment.StartTime)
		if err != nil {
			return false, fmt.Errorf("appointment %d has malformed start time: %w", appointment.ID, err)
		}
		existEnd, err := util.CombineDateAndTime(date, appointment.EndTime)
		if err != nil {
			return false, fmt.Errorf("appointment %d has malformed end time: %w", appointment.ID, err)
		}

		if overlaps(candStart, candEnd, existStart, existEnd) {
			return true, nil
		}
	}

	return false, nil
}

// overlaps is the standard two-interval test for half-open ranges.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
