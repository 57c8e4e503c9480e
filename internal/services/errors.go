package services

import "errors"

// Business-level errors; handlers map these to HTTP status codes.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrNoOTPPending       = errors.New("no OTP pending")
	ErrOTPMismatch        = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP expired")

	ErrEmptyPrompt     = errors.New("no message, image file, or image URL provided")
	ErrEmptyAIResponse = errors.New("empty response from AI provider")
	ErrUpstreamAI      = errors.New("AI provider request failed")
	ErrChatNotFound    = errors.New("chat not found")
)
