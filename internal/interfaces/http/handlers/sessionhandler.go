package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	sessionApp "clinica/internal/application/session"
	domain "clinica/internal/domain/session"
	"clinica/internal/shared/logger"
	"clinica/internal/shared/utils"
)

// SessionHandler exposes the session lifecycle service over HTTP for the
// authentication layer and for administrative revocation.
type SessionHandler struct {
	service *sessionApp.Service
	logger  logger.Interface
}

func NewSessionHandler(service *sessionApp.Service, log logger.Interface) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  log,
	}
}

type CreateSessionRequest struct {
	UserID      string              `json:"user_id" binding:"required"`
	IPAddress   string              `json:"ip_address" binding:"required,ip"`
	UserAgent   string              `json:"user_agent" binding:"required"`
	RememberMe  bool                `json:"remember_me"`
	Secure      bool                `json:"secure"`
	Fingerprint *FingerprintRequest `json:"fingerprint"`
}

type FingerprintRequest struct {
	Screen   string `json:"screen"`
	Timezone string `json:"timezone"`
	Language string `json:"language"`
	Platform string `json:"platform"`
}

type ValidateSessionRequest struct {
	IPAddress string `json:"ip_address" binding:"omitempty,ip"`
}

type TerminateSessionRequest struct {
	Reason string `json:"reason"`
}

type sessionResponse struct {
	SessionID    string               `json:"session_id"`
	UserID       string               `json:"user_id"`
	DeviceID     string               `json:"device_id"`
	IPAddress    string               `json:"ip_address"`
	Device       any                  `json:"device"`
	Location     *domain.Location     `json:"location,omitempty"`
	Flags        domain.SecurityFlags `json:"flags"`
	CreatedAt    string               `json:"created_at"`
	LastActivity string               `json:"last_activity"`
	ExpiresAt    string               `json:"expires_at"`
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		SessionID:    s.ID,
		UserID:       s.UserID,
		DeviceID:     s.DeviceID,
		IPAddress:    s.IPAddress,
		Device:       s.Device,
		Location:     s.Location,
		Flags:        s.Flags,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		LastActivity: s.LastActivity.Format(time.RFC3339),
		ExpiresAt:    s.ExpiresAt.Format(time.RFC3339),
	}
}

// Create mints a session for an already-authenticated user.
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindingErrorResponse(c, err)
		return
	}

	in := sessionApp.CreateInput{
		UserID:     req.UserID,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
		RememberMe: req.RememberMe,
		Secure:     req.Secure,
	}
	if req.Fingerprint != nil {
		in.Fingerprint = &domain.DeviceFingerprint{
			Screen:   req.Fingerprint.Screen,
			Timezone: req.Fingerprint.Timezone,
			Language: req.Fingerprint.Language,
			Platform: req.Fingerprint.Platform,
		}
	}

	result, err := h.service.CreateSession(c.Request.Context(), in)
	if err != nil {
		h.logger.Warnw("session creation rejected", "user_id", req.UserID, "error", err)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "session created", gin.H{
		"session_id": result.SessionID,
		"expires_at": result.ExpiresAt,
	})
}

// Validate checks a session and reports the structured outcome.
func (h *SessionHandler) Validate(c *gin.Context) {
	sessionID := c.Param("sessionId")

	// The IP is optional and so is the body itself.
	var req ValidateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BindingErrorResponse(c, err)
		return
	}

	result := h.service.ValidateSession(c.Request.Context(), sessionID, req.IPAddress)

	payload := gin.H{
		"is_valid":        result.Valid,
		"requires_reauth": result.RequiresReauth,
	}
	if result.Reason != "" {
		payload["reason"] = result.Reason
	}
	if result.Session != nil {
		payload["session"] = toSessionResponse(result.Session)
	}
	utils.SuccessResponse(c, http.StatusOK, "", payload)
}

// List returns the user's active sessions.
func (h *SessionHandler) List(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "user ID is required")
		return
	}

	sessions := h.service.GetUserSessions(c.Request.Context(), userID)
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"sessions": out})
}

// Terminate revokes a single session. Idempotent: revoking an unknown
// session still returns 200.
func (h *SessionHandler) Terminate(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var req TerminateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BindingErrorResponse(c, err)
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = sessionApp.ReasonLogout
	}

	h.service.TerminateSession(c.Request.Context(), sessionID, reason)
	utils.SuccessResponse(c, http.StatusOK, "session terminated", nil)
}

// TerminateAll revokes every session for a user, optionally sparing one.
func (h *SessionHandler) TerminateAll(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "user ID is required")
		return
	}
	except := c.Query("except")

	h.service.TerminateAllUserSessions(c.Request.Context(), userID, except, sessionApp.ReasonAdminRevoked)
	utils.SuccessResponse(c, http.StatusOK, "sessions terminated", nil)
}
