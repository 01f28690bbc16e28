package handlers

import (
	"net/http"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/services/admin"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService admin.UserService
}

func NewUserHandler(userService admin.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Success 200 {object} xerr.Response
// @Failure 401 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Profile retrieved", user)
}
