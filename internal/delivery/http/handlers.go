package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/postly/backend/internal/domain"
	"github.com/postly/backend/internal/metrics"
	"github.com/postly/backend/internal/middleware"
	"github.com/postly/backend/internal/usecase"
)

type Handler struct {
	authUsecase    *usecase.AuthUsecase
	tokenService   *usecase.TokenService
	postUsecase    *usecase.PostUsecase
	productUsecase *usecase.ProductUsecase
}

func NewHandler(auth *usecase.AuthUsecase, tokens *usecase.TokenService, posts *usecase.PostUsecase, products *usecase.ProductUsecase) *Handler {
	return &Handler{
		authUsecase:    auth,
		tokenService:   tokens,
		postUsecase:    posts,
		productUsecase: products,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeUsecaseError maps the core error taxonomy onto transport responses.
// Expired tokens carry a distinct message so clients know to refresh rather
// than re-authenticate.
func writeUsecaseError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Message, Field: vErr.Field})
	case errors.Is(err, usecase.ErrEmailExists):
		writeError(w, http.StatusConflict, "A user with this email already exists")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Unable to log in with provided credentials")
	case errors.Is(err, usecase.ErrAccountDisabled):
		writeError(w, http.StatusUnauthorized, "User account is disabled")
	case errors.Is(err, usecase.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, usecase.ErrTokenRevoked):
		writeError(w, http.StatusUnauthorized, "Token revoked")
	case errors.Is(err, usecase.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, usecase.ErrForbidden):
		writeError(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, usecase.ErrPostNotFound), errors.Is(err, usecase.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// userResponse is the profile representation; the password hash is never
// part of any output.
type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		PhoneNumber: u.PhoneNumber,
		DateJoined:  u.CreatedAt,
		LastLogin:   u.LastLoginAt,
	}
}

type authResponse struct {
	User    userResponse       `json:"user"`
	Tokens  *usecase.TokenPair `json:"tokens"`
	Message string             `json:"message"`
}

// Auth handlers

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, tokens, err := h.authUsecase.Register(req)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	metrics.Registrations.Inc()
	writeJSON(w, http.StatusCreated, authResponse{
		User:    toUserResponse(user),
		Tokens:  tokens,
		Message: "User registered successfully.",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Must include email and password")
		return
	}

	user, tokens, err := h.authUsecase.Login(req.Email, req.Password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		writeUsecaseError(w, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, authResponse{
		User:    toUserResponse(user),
		Tokens:  tokens,
		Message: "Login successful.",
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	if err := h.tokenService.Revoke(req.Refresh); err != nil {
		writeUsecaseError(w, err)
		return
	}

	metrics.TokenRevocations.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful."})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	access, err := h.tokenService.Refresh(req.Refresh)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		writeUsecaseError(w, err)
		return
	}

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authUsecase.GetProfile(userID)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input usecase.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authUsecase.UpdateProfile(userID, input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    toUserResponse(user),
		"message": "Profile updated successfully.",
	})
}

type changePasswordRequest struct {
	OldPassword  string `json:"old_password"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authUsecase.ChangePassword(userID, req.OldPassword, req.NewPassword, req.NewPassword2); err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully."})
}
