package endpoint

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ferreyrapanozzo/dental-clinic-api/model"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

const (
	maxTreatmentNameLength        = 50
	maxTreatmentDescriptionLength = 500
)

type CreateTreatmentRequest struct {
	Name            string  `json:"name" example:"Dental cleaning"`
	Description     string  `json:"description" example:"Routine plaque and tartar removal"`
	Price           float64 `json:"price" example:"1500"`
	DurationMinutes int     `json:"duration_minutes" example:"30"`
	Image           string  `json:"image,omitempty" example:"https://cdn.example.com/cleaning.jpg"`
}

// UpdateTreatmentRequest carries a partial update; zero-valued fields are
// left unchanged.
type UpdateTreatmentRequest struct {
	Name            string  `json:"name,omitempty"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	Image           string  `json:"image,omitempty"`
}

func validateTreatment(req *CreateTreatmentRequest) []string {
	var errs []string

	if req.Name == "" {
		errs = append(errs, "name is required")
	} else if len(req.Name) > maxTreatmentNameLength {
		errs = append(errs, fmt.Sprintf("name must not exceed %d characters", maxTreatmentNameLength))
	}
	if req.Description == "" {
		errs = append(errs, "description is required")
	} else if len(req.Description) > maxTreatmentDescriptionLength {
		errs = append(errs, fmt.Sprintf("description must not exceed %d characters", maxTreatmentDescriptionLength))
	}
	if req.Price <= 0 {
		errs = append(errs, "price must be greater than zero")
	}
	if req.DurationMinutes < 0 {
		errs = append(errs, "duration must not be negative")
	}

	return errs
}

// ensureTreatmentNameAvailable answers 409 when another treatment already
// carries the (normalized) name. excludeID skips the treatment being updated.
func ensureTreatmentNameAvailable(c *gin.Context, db *gorm.DB, name string, excludeID uint) bool {
	query := db.Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var existing model.Treatment
	err := query.First(&existing).Error
	if err == nil {
		util.CallErrorConflict(c, util.APIErrorParams{
			Msg: "A treatment with that name already exists",
			Err: fmt.Errorf("duplicate treatment name %q", name),
		})
		return false
	}
	if err != gorm.ErrRecordNotFound {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to verify treatment name", Err: err})
		return false
	}
	return true
}

func loadTreatmentOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.Treatment, bool) {
	var treatment model.Treatment
	if err := db.First(&treatment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Treatment not found", Err: err})
			return model.Treatment{}, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve treatment", Err: err})
		return model.Treatment{}, false
	}
	return treatment, true
}

// ListTreatments godoc
// @Summary      List the treatment catalog
// @Description  Public catalog listing served from an in-memory cache when warm
// @Tags         Treatments
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]model.Treatment} "Treatments retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /treatments [get]
func ListTreatments(c *gin.Context) {
	if treatments, ok := util.GetCachedTreatments(); ok {
		util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatments retrieved", Data: treatments})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var treatments []model.Treatment
	if err := db.Order("name ASC").Find(&treatments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve treatments", Err: err})
		return
	}

	util.SetCachedTreatments(treatments)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatments retrieved", Data: treatments})
}

// GetTreatment godoc
// @Summary      Get a treatment by id
// @Tags         Treatments
// @Produce      json
// @Param        id path int true "Treatment ID"
// @Success      200 {object} util.APIResponse{data=model.Treatment} "Treatment retrieved"
// @Failure      400 {object} util.APIResponse "Invalid id"
// @Failure      404 {object} util.APIResponse "Treatment not found"
// @Router       /treatments/{id} [get]
func GetTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	treatment, ok := loadTreatmentOrRespond(c, db, id)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment retrieved", Data: treatment})
}

// CreateTreatment godoc
// @Summary      Create a treatment
// @Description  Professional-only. Names are normalized and must be unique.
// @Tags         Treatments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTreatmentRequest true "Treatment details"
// @Success      201 {object} util.APIResponse{data=model.Treatment} "Treatment created"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      409 {object} util.APIResponse "Duplicate name"
// @Router       /treatments [post]
func CreateTreatment(c *gin.Context) {
	var req CreateTreatmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	req.Name = util.NormalizeName(req.Name)
	if errs := validateTreatment(&req); len(errs) > 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg:    "Invalid data",
			Err:    fmt.Errorf("treatment validation failed"),
			Errors: errs,
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if !ensureTreatmentNameAvailable(c, db, req.Name, 0) {
		return
	}

	treatment := model.Treatment{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Image:           req.Image,
	}

	if err := db.Create(&treatment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create treatment", Err: err})
		return
	}

	util.InvalidateTreatmentCache()
	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Treatment created successfully", Data: treatment})
}

// UpdateTreatment godoc
// @Summary      Update a treatment
// @Description  Professional-only partial update; a name change re-checks uniqueness against every other treatment
// @Tags         Treatments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Treatment ID"
// @Param        request body UpdateTreatmentRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.Treatment} "Treatment updated"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      404 {object} util.APIResponse "Treatment not found"
// @Failure      409 {object} util.APIResponse "Duplicate name"
// @Router       /treatments/{id} [put]
func UpdateTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTreatmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	treatment, ok := loadTreatmentOrRespond(c, db, id)
	if !ok {
		return
	}

	if req.Name != "" {
		name := util.NormalizeName(req.Name)
		if len(name) > maxTreatmentNameLength {
			util.CallUserError(c, util.APIErrorParams{
				Msg: fmt.Sprintf("Name must not exceed %d characters", maxTreatmentNameLength),
				Err: fmt.Errorf("treatment name too long"),
			})
			return
		}
		if !ensureTreatmentNameAvailable(c, db, name, treatment.ID) {
			return
		}
		treatment.Name = name
	}
	if req.Description != "" {
		if len(req.Description) > maxTreatmentDescriptionLength {
			util.CallUserError(c, util.APIErrorParams{
				Msg: fmt.Sprintf("Description must not exceed %d characters", maxTreatmentDescriptionLength),
				Err: fmt.Errorf("treatment description too long"),
			})
			return
		}
		treatment.Description = req.Description
	}
	if req.Price != 0 {
		if req.Price < 0 {
			util.CallUserError(c, util.APIErrorParams{Msg: "Price must be greater than zero", Err: fmt.Errorf("negative price")})
			return
		}
		treatment.Price = req.Price
	}
	if req.DurationMinutes != 0 {
		if req.DurationMinutes < 0 {
			util.CallUserError(c, util.APIErrorParams{Msg: "Duration must not be negative", Err: fmt.Errorf("negative duration")})
			return
		}
		treatment.DurationMinutes = req.DurationMinutes
	}
	if req.Image != "" {
		treatment.Image = req.Image
	}

	if err := db.Save(&treatment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update treatment", Err: err})
		return
	}

	util.InvalidateTreatmentCache()
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment updated successfully", Data: treatment})
}

// DeleteTreatment godoc
// @Summary      Delete a treatment
// @Description  Professional-only hard delete
// @Tags         Treatments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Treatment ID"
// @Success      200 {object} util.APIResponse "Treatment deleted"
// @Failure      400 {object} util.APIResponse "Invalid id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      404 {object} util.APIResponse "Treatment not found"
// @Router       /treatments/{id} [delete]
func DeleteTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	treatment, ok := loadTreatmentOrRespond(c, db, id)
	if !ok {
		return
	}

	if err := db.Unscoped().Delete(&treatment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete treatment", Err: err})
		return
	}

	util.InvalidateTreatmentCache()
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Treatment deleted successfully"})
}
