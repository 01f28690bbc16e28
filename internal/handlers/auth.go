package handlers

import (
	"net/http"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/services/admin"
	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6,max=255"`
	Email    string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // username or email
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthHandler struct {
	authService admin.AuthService
}

func NewAuthHandler(authService admin.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param data body RegisterRequest true "registration info"
// @Success 201 {object} xerr.Response
// @Failure 400 {object} xerr.Response
// @Failure 409 {object} xerr.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	xerr.Success(c, http.StatusCreated, "User registered successfully", gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// @Summary Log in with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param data body LoginRequest true "login info"
// @Success 200 {object} xerr.Response
// @Failure 401 {object} xerr.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	xerr.Success(c, http.StatusOK, "Login successful", tokens)
}

// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param data body RefreshRequest true "refresh token"
// @Success 200 {object} xerr.Response
// @Failure 401 {object} xerr.Response
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	xerr.Success(c, http.StatusOK, "Token refreshed", tokens)
}
