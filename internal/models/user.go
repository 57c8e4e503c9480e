package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAvatarURL is applied at registration when no avatar has been uploaded.
const DefaultAvatarURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_1280.png"

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // Don't return password hash in JSON
	Bio      string             `bson:"bio" json:"bio"`
	Image    string             `bson:"image" json:"image"`

	IsEmailVerified bool `bson:"isEmailVerified" json:"isEmailVerified"`

	// A non-nil OTP always pairs with a non-nil expiry; verification clears both.
	EmailVerificationOTP          *string    `bson:"emailVerificationOtp" json:"-"`
	EmailVerificationOTPExpiresAt *time.Time `bson:"emailVerificationOtpExpiresAt" json:"-"`
}

// PublicUser is the sanitized projection safe to return to clients.
type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Image    string             `json:"image"`
	Bio      string             `json:"bio"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Image:    u.Image,
		Bio:      u.Bio,
	}
}
