package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/echomind/echomind-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, ErrUserExists
		}
	}
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	for _, u := range f.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.FindByUsernameOrEmail(ctx, "", email)
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, ok := f.users[oid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.EmailVerificationOTP = &code
	u.EmailVerificationOTPExpiresAt = &expiresAt
	return nil
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsEmailVerified = true
	u.EmailVerificationOTP = nil
	u.EmailVerificationOTPExpiresAt = nil
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Image = url
	return nil
}

// fakeMailer records sent codes and can be told to fail.
type fakeMailer struct {
	sent []string // "to:code"
	fail bool
}

func (f *fakeMailer) SendOTPEmail(to, code string) error {
	if f.fail {
		return errors.New("mail provider rejected the send")
	}
	f.sent = append(f.sent, to+":"+code)
	return nil
}

func (f *fakeMailer) lastCode() string {
	if len(f.sent) == 0 {
		return ""
	}
	last := f.sent[len(f.sent)-1]
	for i := len(last) - 1; i >= 0; i-- {
		if last[i] == ':' {
			return last[i+1:]
		}
	}
	return ""
}

// fakeChatRepo is an in-memory ChatRepository.
type fakeChatRepo struct {
	turns map[primitive.ObjectID]*models.ChatTurn
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{turns: map[primitive.ObjectID]*models.ChatTurn{}}
}

func (f *fakeChatRepo) Insert(ctx context.Context, turn *models.ChatTurn) (*models.ChatTurn, error) {
	turn.ID = primitive.NewObjectID()
	f.turns[turn.ID] = turn
	return turn, nil
}

func (f *fakeChatRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChatTurn, error) {
	out := []models.ChatTurn{}
	for _, t := range f.turns {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeChatRepo) DeleteAllByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for id, t := range f.turns {
		if t.UserID == userID {
			delete(f.turns, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeChatRepo) DeleteByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) error {
	t, ok := f.turns[id]
	if !ok || t.UserID != userID {
		return ErrChatNotFound
	}
	delete(f.turns, id)
	return nil
}

// fakeGenerator returns a canned response or error.
type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Generate(ctx context.Context, message string, image *ImagePayload, imageURL string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}
