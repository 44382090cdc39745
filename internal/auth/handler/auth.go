// Package handler exposes signup and login over HTTP.
package handler

import (
	"net/http"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/auth/service"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/httputil"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *logger.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(svc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  log,
	}
}

// Signup registers an account and returns an access token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input service.SignupInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	token, err := h.service.Signup(r.Context(), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, token)
}

// Login authenticates an account and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, token)
}
