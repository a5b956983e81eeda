package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/hive-backend/internal/http/response"
	"github.com/yungbote/hive-backend/internal/pkg/ctxutil"
	"github.com/yungbote/hive-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	resp, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, "registration_failed", err)
		return
	}
	response.RespondOK(c, resp)
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	resp, err := ah.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, "login_failed", err)
		return
	}
	response.RespondOK(c, resp)
}

// POST /api/auth/link-device
func (ah *AuthHandler) LinkDevice(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		DeviceID   string `json:"deviceId"`
		DeviceType string `json:"deviceType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := ah.authService.LinkDevice(c.Request.Context(), rd.UserID, req.DeviceID, req.DeviceType); err != nil {
		response.RespondServiceError(c, "link_device_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PATCH /api/auth/persona
func (ah *AuthHandler) UpdatePersona(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		PersonaRole string `json:"personaRole"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := ah.authService.UpdatePersona(c.Request.Context(), rd.UserID, req.PersonaRole); err != nil {
		response.RespondServiceError(c, "update_persona_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "personaRole": req.PersonaRole})
}
