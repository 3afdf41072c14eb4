package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/repository"
)

type AuthHandler struct {
	users  repository.UserRepository
	issuer *TokenIssuer
}

func NewAuthHandler(users repository.UserRepository, issuer *TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer}
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, "invalid JSON body")
		return
	}
	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "required"
	}
	if req.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		respondFieldErrors(w, "email and password are required", fields)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, domain.CodeAuthRequired, "invalid credentials")
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, domain.CodeAuthRequired, "invalid credentials")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.LoginResponse{Token: token, User: *user})
}
