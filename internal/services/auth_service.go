package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/echomind/echomind-backend/internal/auth"
	"github.com/echomind/echomind-backend/internal/models"
	"github.com/echomind/echomind-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPValidity is how long an emailed verification code stays usable.
const OTPValidity = 10 * time.Minute

// UserRepository is what AuthService needs from the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, url string) error
}

// OTPMailer delivers verification codes.
type OTPMailer interface {
	SendOTPEmail(to, code string) error
}

// AuthService orchestrates registration, credential verification, OTP
// issuance/verification and session token issuance.
type AuthService struct {
	users     UserRepository
	mailer    OTPMailer
	jwtSecret []byte
}

func NewAuthService(users UserRepository, mailer OTPMailer, jwtSecret []byte) *AuthService {
	return &AuthService{users: users, mailer: mailer, jwtSecret: jwtSecret}
}

// Register creates an unverified user and emails a verification code.
// A mail provider rejection fails the whole operation; verification is mandatory.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	_, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(OTPValidity)

	user := &models.User{
		Username:                      username,
		Email:                         email,
		Password:                      hash,
		Image:                         models.DefaultAvatarURL,
		IsEmailVerified:               false,
		EmailVerificationOTP:          &code,
		EmailVerificationOTPExpiresAt: &expiresAt,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return err
	}

	return s.mailer.SendOTPEmail(email, code)
}

// Login verifies credentials and returns the user plus a signed session token.
// Absent users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !utils.VerifyPassword(password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		return nil, "", ErrEmailNotVerified
	}

	token, err := auth.GenerateToken(user.ID.Hex(), s.jwtSecret, auth.SessionDuration)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return user, token, nil
}

// SendVerificationOTP issues a fresh code for an unverified account,
// overwriting any pending one.
func (s *AuthService) SendVerificationOTP(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.users.SetOTP(ctx, user.ID, code, time.Now().Add(OTPValidity)); err != nil {
		return err
	}

	return s.mailer.SendOTPEmail(email, code)
}

// VerifyEmailOTP checks a submitted code. Failure precedence: unknown user,
// already verified, no code pending, wrong code, expired code.
func (s *AuthService) VerifyEmailOTP(ctx context.Context, email, code string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}
	if user.EmailVerificationOTP == nil || user.EmailVerificationOTPExpiresAt == nil {
		return ErrNoOTPPending
	}
	if *user.EmailVerificationOTP != code {
		return ErrOTPMismatch
	}
	if user.EmailVerificationOTPExpiresAt.Before(time.Now()) {
		return ErrOTPExpired
	}

	return s.users.MarkVerified(ctx, user.ID)
}
