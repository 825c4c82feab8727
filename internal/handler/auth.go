package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/itemvault/internal/domain"
	"github.com/yourorg/itemvault/internal/observability/metrics"
	"github.com/yourorg/itemvault/internal/security/audit"
	"github.com/yourorg/itemvault/internal/service"
)

// AuthHandler handles registration and login endpoints
type AuthHandler struct {
	authService *service.AuthService
	auditLog    *audit.Logger
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, auditLog *audit.Logger, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		auditLog:    auditLog,
		logger:      logger,
	}
}

// RegisterRequest represents a registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request body. The identifier may arrive in
// any of three fields; "identifier" wins over "username" over "email".
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (req *LoginRequest) identifierValue() string {
	if req.Identifier != "" {
		return req.Identifier
	}
	if req.Username != "" {
		return req.Username
	}
	return req.Email
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode register request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		metrics.ObserveAuthAttempt("register", "failure")
		if errors.Is(err, domain.ErrDuplicateUsername) || errors.Is(err, domain.ErrDuplicateEmail) {
			h.auditLog.LogRegistration(r.Context(), "", "conflict")
		}
		writeDomainError(w, err)
		return
	}

	metrics.ObserveAuthAttempt("register", "success")
	h.auditLog.LogRegistration(r.Context(), user.ID, "success")

	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), req.identifierValue(), req.Password)
	if err != nil {
		metrics.ObserveAuthAttempt("login", "failure")
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.auditLog.LogLogin(r.Context(), "", "denied")
		}
		writeDomainError(w, err)
		return
	}

	metrics.ObserveAuthAttempt("login", "success")
	h.auditLog.LogLogin(r.Context(), result.Username, "success")

	writeJSON(w, http.StatusOK, result)
}
