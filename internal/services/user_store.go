package services

import (
	"context"
	"errors"
	"time"

	"github.com/echomind/echomind-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore is the data access layer over the users collection.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	res, err := s.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

// FindByUsernameOrEmail matches either field; used by login and by the
// duplicate check at registration.
func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	return s.findOne(ctx, filter)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindByID resolves a hex object id to a live user record.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetOTP stores a fresh verification code and expiry, overwriting any pending one.
func (s *UserStore) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"emailVerificationOtp":          code,
		"emailVerificationOtpExpiresAt": expiresAt,
	}}
	return s.updateOne(ctx, id, update)
}

// MarkVerified flips the verified flag and clears the OTP fields in one update.
func (s *UserStore) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"isEmailVerified":               true,
		"emailVerificationOtp":          nil,
		"emailVerificationOtpExpiresAt": nil,
	}}
	return s.updateOne(ctx, id, update)
}

func (s *UserStore) UpdateAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{"image": url}})
}

func (s *UserStore) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
