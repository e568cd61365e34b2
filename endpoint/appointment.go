package endpoint

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ferreyrapanozzo/dental-clinic-api/middleware"
	"github.com/ferreyrapanozzo/dental-clinic-api/model"
	"github.com/ferreyrapanozzo/dental-clinic-api/scheduling"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

type CreateAppointmentRequest struct {
	Date        string `json:"date" example:"2026-09-15"`
	StartTime   string `json:"start_time" example:"10:00"`
	EndTime     string `json:"end_time" example:"10:30"`
	UserID      uint   `json:"user_id" example:"3"`
	TreatmentID uint   `json:"treatment_id" example:"2"`
	Notes       string `json:"notes,omitempty" example:"First visit"`
}

// UpdateAppointmentRequest carries a partial update. Empty/zero fields are
// left unchanged; Notes and State are pointers so an explicit empty string
// can be told apart from an omitted field.
type UpdateAppointmentRequest struct {
	Date        string  `json:"date,omitempty" example:"2026-09-16"`
	StartTime   string  `json:"start_time,omitempty" example:"11:00"`
	EndTime     string  `json:"end_time,omitempty" example:"11:30"`
	TreatmentID uint    `json:"treatment_id,omitempty" example:"4"`
	Notes       *string `json:"notes,omitempty" example:"Rescheduled"`
	State       *string `json:"state,omitempty" example:"confirmed"`
}

type UpdateStateRequest struct {
	State string `json:"state" example:"cancelled"`
}

// validateCreateAppointment collects every field error for the create payload.
func validateCreateAppointment(req *CreateAppointmentRequest) []string {
	var errs []string

	if req.Date == "" {
		errs = append(errs, "date is required")
	} else if _, err := util.ParseDate(req.Date); err != nil {
		errs = append(errs, "invalid date")
	}
	if req.StartTime == "" {
		errs = append(errs, "start time is required")
	} else if _, err := util.ParseClock(req.StartTime); err != nil {
		errs = append(errs, "invalid start time")
	}
	if req.EndTime == "" {
		errs = append(errs, "end time is required")
	} else if _, err := util.ParseClock(req.EndTime); err != nil {
		errs = append(errs, "invalid end time")
	}
	if req.StartTime != "" && req.EndTime != "" {
		if after, err := util.IsEndAfterStart(req.StartTime, req.EndTime); err == nil && !after {
			errs = append(errs, "end time must be after start time")
		}
	}
	if req.UserID == 0 {
		errs = append(errs, "patient is required")
	}
	if req.TreatmentID == 0 {
		errs = append(errs, "treatment is required")
	}

	return errs
}

// ensurePatientExists answers 404 when the referenced patient is missing.
func ensurePatientExists(c *gin.Context, db *gorm.DB, userID uint) bool {
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to verify patient", Err: err})
		return false
	}
	return true
}

// ensureTreatmentExists answers 404 when the referenced treatment is missing.
func ensureTreatmentExists(c *gin.Context, db *gorm.DB, treatmentID uint) bool {
	var treatment model.Treatment
	if err := db.First(&treatment, treatmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Treatment not found", Err: err})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to verify treatment", Err: err})
		return false
	}
	return true
}

// checkConflictOrRespond runs the overlap check and answers 409 on conflict
// or 500 when the lookup itself fails. Returns true when the slot is free.
func checkConflictOrRespond(c *gin.Context, db *gorm.DB, date, startTime, endTime string, excludeID uint) bool {
	conflict, err := scheduling.HasConflict(db, date, startTime, endTime, excludeID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check schedule conflicts", Err: err})
		return false
	}
	if conflict {
		util.CallErrorConflict(c, util.APIErrorParams{
			Msg: "An appointment already exists in that time slot",
			Err: fmt.Errorf("schedule conflict on %s between %s and %s", date, startTime, endTime),
		})
		return false
	}
	return true
}

func loadAppointmentOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.Appointment, bool) {
	var appointment model.Appointment
	if err := db.First(&appointment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return model.Appointment{}, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return model.Appointment{}, false
	}
	return appointment, true
}

// ListAppointments godoc
// @Summary      List all appointments
// @Description  Get the full agenda, newest date first. Professional-only access.
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.Appointment} "Appointments retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointments [get]
func ListAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appointments []model.Appointment
	if err := db.Order("date DESC, start_time ASC").Find(&appointments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appointments})
}

// ListAppointmentsByDate godoc
// @Summary      List appointments for a date
// @Description  Get the agenda for one calendar date ordered by start time
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        date path string true "Date (YYYY-MM-DD)"
// @Success      200 {object} util.APIResponse{data=[]model.Appointment} "Appointments retrieved"
// @Failure      400 {object} util.APIResponse "Invalid date"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Router       /appointments/date/{date} [get]
func ListAppointmentsByDate(c *gin.Context) {
	date := c.Param("date")
	if _, err := util.ParseDate(date); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid date format, expected YYYY-MM-DD", Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appointments, err := scheduling.AppointmentsOnDate(db, date)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appointments})
}

// ListAppointmentsByUser godoc
// @Summary      List a patient's appointments
// @Description  Patients may only see their own agenda; professionals may see anyone's
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200 {object} util.APIResponse{data=[]model.Appointment} "Appointments retrieved"
// @Failure      400 {object} util.APIResponse "Invalid id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /appointments/user/{userId} [get]
func ListAppointmentsByUser(c *gin.Context) {
	targetID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	callerID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetRole(c)
	if role != model.RoleProfessional && callerID != targetID {
		util.CallForbidden(c, util.APIErrorParams{Msg: "Patients may only view their own appointments", Err: fmt.Errorf("user %d requested agenda of %d", callerID, targetID)})
		return
	}

	if !ensurePatientExists(c, db, targetID) {
		return
	}

	var appointments []model.Appointment
	if err := db.Where("user_id = ?", targetID).Order("date DESC, start_time ASC").Find(&appointments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appointments})
}

// GetAppointment godoc
// @Summary      Get an appointment by id
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment retrieved"
// @Failure      400 {object} util.APIResponse "Invalid id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointments/{id} [get]
func GetAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appointment, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment retrieved", Data: appointment})
}

// CreateAppointment godoc
// @Summary      Book an appointment
// @Description  Validate the slot, verify patient and treatment, reject overlapping bookings, then persist with state pending
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateAppointmentRequest true "Appointment details"
// @Success      201 {object} util.APIResponse{data=model.Appointment} "Appointment created"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      404 {object} util.APIResponse "Patient or treatment not found"
// @Failure      409 {object} util.APIResponse "Slot already booked"
// @Router       /appointments [post]
func CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if errs := validateCreateAppointment(&req); len(errs) > 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg:    "Invalid data",
			Err:    fmt.Errorf("appointment validation failed"),
			Errors: errs,
		})
		return
	}

	// Past dates are rejected before any store lookup runs.
	if past, err := util.IsDateInPast(req.Date, time.Now()); err != nil || past {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Appointments cannot be created on past dates",
			Err: fmt.Errorf("date %s is in the past", req.Date),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if !ensurePatientExists(c, db, req.UserID) {
		return
	}
	if !ensureTreatmentExists(c, db, req.TreatmentID) {
		return
	}

	if !checkConflictOrRespond(c, db, req.Date, req.StartTime, req.EndTime, 0) {
		return
	}

	appointment := model.Appointment{
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		UserID:      req.UserID,
		TreatmentID: req.TreatmentID,
		State:       model.AppointmentPending,
		Notes:       req.Notes,
	}

	if err := db.Create(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create appointment", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Appointment created successfully", Data: appointment})
}

// UpdateAppointment godoc
// @Summary      Update an appointment
// @Description  Partial update; a date or time change merges with stored values and re-runs the conflict check excluding the appointment itself
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Appointment ID"
// @Param        request body UpdateAppointmentRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment updated"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      404 {object} util.APIResponse "Appointment or treatment not found"
// @Failure      409 {object} util.APIResponse "Slot already booked"
// @Router       /appointments/{id} [put]
func UpdateAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appointment, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	timeChanged := req.Date != "" || req.StartTime != "" || req.EndTime != ""
	if timeChanged {
		// Merge unspecified fields from the stored row before re-validating.
		date := req.Date
		if date == "" {
			date = appointment.Date
		}
		startTime := req.StartTime
		if startTime == "" {
			startTime = appointment.StartTime
		}
		endTime := req.EndTime
		if endTime == "" {
			endTime = appointment.EndTime
		}

		if _, err := util.ParseDate(date); err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid date format, expected YYYY-MM-DD", Err: err})
			return
		}
		after, err := util.IsEndAfterStart(startTime, endTime)
		if err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid time format, expected HH:MM", Err: err})
			return
		}
		if !after {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "End time must be after start time",
				Err: fmt.Errorf("inverted time range %s-%s", startTime, endTime),
			})
			return
		}

		if !checkConflictOrRespond(c, db, date, startTime, endTime, appointment.ID) {
			return
		}

		appointment.Date = date
		appointment.StartTime = startTime
		appointment.EndTime = endTime
	}

	if req.TreatmentID != 0 {
		if !ensureTreatmentExists(c, db, req.TreatmentID) {
			return
		}
		appointment.TreatmentID = req.TreatmentID
	}

	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if req.State != nil {
		if !model.ValidAppointmentState(*req.State) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid appointment state", Err: fmt.Errorf("unknown state %q", *req.State)})
			return
		}
		appointment.State = *req.State
	}

	if err := db.Save(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment updated successfully", Data: appointment})
}

// UpdateAppointmentState godoc
// @Summary      Change an appointment's state
// @Description  State-only transition: validates enum membership and nothing else, so cancelling or completing never re-checks the schedule
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Appointment ID"
// @Param        request body UpdateStateRequest true "New state"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "State updated"
// @Failure      400 {object} util.APIResponse "Invalid state"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointments/{id}/state [patch]
func UpdateAppointmentState(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStateRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if !model.ValidAppointmentState(req.State) {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid appointment state", Err: fmt.Errorf("unknown state %q", req.State)})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appointment, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	appointment.State = req.State
	if err := db.Save(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update appointment state", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment updated successfully", Data: appointment})
}

// DeleteAppointment godoc
// @Summary      Delete an appointment
// @Description  Hard delete; freed slots become bookable again
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse "Appointment deleted"
// @Failure      400 {object} util.APIResponse "Invalid id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointments/{id} [delete]
func DeleteAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appointment, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	if err := db.Unscoped().Delete(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment deleted successfully"})
}
