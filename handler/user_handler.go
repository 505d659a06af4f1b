package handler

import (
	"encoding/json"
	"net/http"
	"nutritrack-api/common"
	"nutritrack-api/model"
	"nutritrack-api/service"
	"strconv"
)

type UserHandler struct {
	userService service.IUserService
}

func NewUserHandler(userService service.IUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me godoc
// @Summary  Current user's profile
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} model.User
// @Router   /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return common.NewAuthError("Missing authentication context", nil)
	}

	user, err := h.userService.GetProfile(claims.UserID)
	if err != nil {
		return common.AsAppError(err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(user)
	return nil
}

// List godoc
// @Summary  List all users
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} model.User
// @Router   /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		return common.AsAppError(err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(users)
	return nil
}

// UpdateRole godoc
// @Summary  Change a user's role
// @Tags     users
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "user id"
// @Param    request body model.UpdateUserRoleRequest true "role payload"
// @Success  200 {object} map[string]string
// @Failure  400 {object} common.AppError
// @Router   /users/{id}/role [put]
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return common.NewAuthError("Missing authentication context", nil)
	}

	targetID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return common.NewValidationError("Invalid user id")
	}

	var req model.UpdateUserRoleRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.userService.UpdateUserRole(claims, targetID, req.Role); err != nil {
		return common.AsAppError(err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{"status": "role updated"})
	return nil
}
