package handlers

import (
	"errors"
	"net/http"

	"cctv-surveillance-reports/be/middleware"
	"cctv-surveillance-reports/be/observability"
	"cctv-surveillance-reports/be/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewUserHandler(auth *services.AuthService, log *zap.Logger) *UserHandler {
	return &UserHandler{auth: auth, log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type changePasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, services.ErrInvalidCredentials.Error()) {
		return
	}

	identity, token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			observability.RecordLogin("invalid")
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		observability.RecordLogin("error")
		h.log.Error("login failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	observability.RecordLogin("success")
	h.log.Info("user logged in", zap.String("username", identity.Username), zap.String("role", identity.Role))
	c.JSON(http.StatusOK, gin.H{"success": true, "user": identity, "token": token})
}

func (h *UserHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, services.ErrMissingCredentials.Error()) {
		return
	}

	identity, err := h.auth.Register(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials),
			errors.Is(err, services.ErrUserExists),
			errors.Is(err, services.ErrInvalidRole),
			errors.Is(err, services.ErrPasswordTooLong):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("register failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	h.log.Info("user registered", zap.String("username", identity.Username), zap.String("role", identity.Role))
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "User registered successfully", "user": identity})
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}
	// With an enforced session the token, not the body, names the user.
	if username, ok := c.Get(middleware.ContextUsername); ok {
		req.Username = username.(string)
	}

	err := h.auth.ChangePassword(c.Request.Context(), req.Username, req.OldPassword, req.NewPassword)
	h.passwordChanged(c, req.Username, err)
}

func (h *UserHandler) AdminChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	err := h.auth.AdminChangePassword(c.Request.Context(), req.Username, req.NewPassword)
	h.passwordChanged(c, req.Username, err)
}

func (h *UserHandler) passwordChanged(c *gin.Context, username string, err error) {
	switch {
	case err == nil:
		h.log.Info("password changed", zap.String("username", username))
		respondMessage(c, http.StatusOK, "Password changed successfully")
	case errors.Is(err, services.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrWrongPassword),
		errors.Is(err, services.ErrMissingCredentials),
		errors.Is(err, services.ErrPasswordTooLong):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("change password failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to change password")
	}
}
