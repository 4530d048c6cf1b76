package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/auth"
	"github.com/iho/storeledger/internal/usecase"
)

// AuthService defines the session operations used by AuthHandler.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
}

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	users    AuthService
	verifier TokenVerifier
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users AuthService, verifier TokenVerifier) *AuthHandler {
	return &AuthHandler{
		users:    users,
		verifier: verifier,
	}
}

// Login exchanges credentials for a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, "login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginFromResult(result))
}

// Verify reports whether a token is valid and who holds it.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	claims, err := h.verifier.Verify(req.Token)
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, domain.ErrExpiredToken) {
			msg = "Token expired"
		}
		writeJSON(w, http.StatusUnauthorized, dto.VerifyTokenResponse{Valid: false, Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyTokenResponse{
		Valid: true,
		User: &dto.UserInfo{
			ID:      claims.UserID,
			Email:   claims.Email,
			IsAdmin: claims.IsAdmin,
		},
	})
}

// ResetPassword sets a new password for the account with the given email.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		writeDomainError(w, r, "failed to reset password", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, Message: "password updated"})
}
