package endpoint

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ferreyrapanozzo/dental-clinic-api/model"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

// ListUsers godoc
// @Summary      List all users
// @Description  Get every registered account. Professional-only access.
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.User} "Users retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /users [get]
func ListUsers(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var users []model.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve users", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Users retrieved", Data: users})
}

// ListActiveUsers returns users whose session state is currently open.
func ListActiveUsers(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var users []model.User
	if err := db.Where("session_state = ?", model.SessionStarted).Order("id ASC").Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve active users", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Active users retrieved", Data: users})
}

// ListUsersByRole godoc
// @Summary      List users by role
// @Description  Filter accounts by role (user or professional)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        role path string true "Role" Enums(user, professional)
// @Success      200 {object} util.APIResponse{data=[]model.User} "Users retrieved"
// @Failure      400 {object} util.APIResponse "Invalid role"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Forbidden"
// @Router       /users/role/{role} [get]
func ListUsersByRole(c *gin.Context) {
	role := c.Param("role")
	if !model.ValidRole(role) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Role must be %q or %q", model.RoleUser, model.RoleProfessional),
			Err: fmt.Errorf("invalid role %q", role),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var users []model.User
	if err := db.Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve users", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Users retrieved", Data: users})
}

// GetUser godoc
// @Summary      Get a user by id
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse{data=model.User} "User retrieved"
// @Failure      400 {object} util.APIResponse "Invalid id"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /users/{id} [get]
func GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User retrieved", Data: user})
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Hard-delete a patient account. Professional accounts cannot be deleted.
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse "User deleted"
// @Failure      400 {object} util.APIResponse "Invalid id"
// @Failure      403 {object} util.APIResponse "Cannot delete professionals"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /users/{id} [delete]
func DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return
	}

	if user.Role == model.RoleProfessional {
		util.CallForbidden(c, util.APIErrorParams{Msg: "Professional accounts cannot be deleted", Err: fmt.Errorf("cannot delete professional")})
		return
	}

	if err := db.Unscoped().Delete(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete user", Err: err})
		return
	}

	// Dangling sessions are useless once the account is gone.
	_ = db.Where("user_id = ?", user.ID).Delete(&model.Session{}).Error
	_ = util.InvalidateUserSessions(user.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User deleted successfully"})
}
