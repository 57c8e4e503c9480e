package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/echomind/echomind-backend/internal/auth"
	"github.com/echomind/echomind-backend/internal/middleware"
	"github.com/echomind/echomind-backend/internal/services"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct {
	svc   *services.AuthService
	users services.UserRepository
	// uploads is nil when Cloudinary is not configured; avatar uploads are disabled.
	uploads *services.CloudinaryService
}

func NewAuthHandler(svc *services.AuthService, users services.UserRepository, uploads *services.CloudinaryService) *AuthHandler {
	return &AuthHandler{svc: svc, users: users, uploads: uploads}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Register creates an unverified account and triggers the OTP email.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}

	if err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("registration failed")
		writeMessage(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeMessage(w, http.StatusCreated, "User created successfully. OTP sent to email for verification.")
}

// Login verifies credentials, sets the session cookie, and returns the
// sanitized user. Bad credentials get one generic message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			writeMessage(w, http.StatusBadRequest, "invalid username or password")
		case errors.Is(err, services.ErrEmailNotVerified):
			writeMessage(w, http.StatusForbidden, "Email not verified. Please verify using the OTP sent to your email.")
		default:
			log.Error().Err(err).Msg("login failed")
			writeMessage(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	http.SetCookie(w, auth.NewSessionCookie(token))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "login successfully",
		"user":    user.Public(),
	})
}

// Logout clears the session cookie. Idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedSessionCookie())
	writeMessage(w, http.StatusOK, "logout successfully")
}

// SendOTP issues a fresh verification code for an unverified account.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.svc.SendVerificationOTP(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrAlreadyVerified):
			writeMessage(w, http.StatusBadRequest, "Email already verified")
		default:
			log.Error().Err(err).Str("email", req.Email).Msg("sending OTP failed")
			writeMessage(w, http.StatusInternalServerError, "Failed to send OTP email")
		}
		return
	}

	writeMessage(w, http.StatusOK, "OTP sent to email")
}

// VerifyOTP checks a submitted code and marks the email verified.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		writeMessage(w, http.StatusBadRequest, "Email and otp are required")
		return
	}

	if err := h.svc.VerifyEmailOTP(r.Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrAlreadyVerified):
			writeMessage(w, http.StatusBadRequest, "Email already verified")
		case errors.Is(err, services.ErrNoOTPPending):
			writeMessage(w, http.StatusBadRequest, "No OTP pending")
		case errors.Is(err, services.ErrOTPMismatch):
			writeMessage(w, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, services.ErrOTPExpired):
			writeMessage(w, http.StatusBadRequest, "OTP expired")
		default:
			log.Error().Err(err).Str("email", req.Email).Msg("OTP verification failed")
			writeMessage(w, http.StatusInternalServerError, "Failed to verify OTP")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Email verified successfully")
}

// GetMe returns the sanitized projection of the authenticated user.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized: invalid or missing session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Current user fetched successfully",
		"user":    user.Public(),
	})
}

// UploadAvatar stores a new avatar image and updates the user record.
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized: invalid or missing session")
		return
	}
	if h.uploads == nil {
		writeMessage(w, http.StatusInternalServerError, "Upload service not available")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No avatar file provided")
		return
	}
	defer file.Close()

	url, err := h.uploads.UploadAvatar(r.Context(), file)
	if err != nil {
		log.Error().Err(err).Msg("avatar upload failed")
		writeMessage(w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	if err := h.users.UpdateAvatar(r.Context(), user.ID, url); err != nil {
		log.Error().Err(err).Msg("avatar update failed")
		writeMessage(w, http.StatusInternalServerError, "Failed to update avatar")
		return
	}

	user.Image = url
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Avatar updated successfully",
		"user":    user.Public(),
	})
}
