package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/echomind/echomind-backend/internal/handlers"
	"github.com/echomind/echomind-backend/internal/middleware"
	"github.com/echomind/echomind-backend/internal/models"
	"github.com/echomind/echomind-backend/internal/routes"
	"github.com/echomind/echomind-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "handler-test-secret"

type memUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func (m *memUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, services.ErrUserExists
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = user
	return user, nil
}

func (m *memUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	for _, u := range m.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.FindByUsernameOrEmail(ctx, "", email)
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, services.ErrUserNotFound
	}
	u, ok := m.users[oid]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return services.ErrUserNotFound
	}
	u.EmailVerificationOTP = &code
	u.EmailVerificationOTPExpiresAt = &expiresAt
	return nil
}

func (m *memUserRepo) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	u, ok := m.users[id]
	if !ok {
		return services.ErrUserNotFound
	}
	u.IsEmailVerified = true
	u.EmailVerificationOTP = nil
	u.EmailVerificationOTPExpiresAt = nil
	return nil
}

func (m *memUserRepo) UpdateAvatar(ctx context.Context, id primitive.ObjectID, url string) error {
	u, ok := m.users[id]
	if !ok {
		return services.ErrUserNotFound
	}
	u.Image = url
	return nil
}

type memChatRepo struct {
	turns map[primitive.ObjectID]*models.ChatTurn
	seq   int64
}

func (m *memChatRepo) Insert(ctx context.Context, turn *models.ChatTurn) (*models.ChatTurn, error) {
	turn.ID = primitive.NewObjectID()
	// Force strictly increasing timestamps so ordering is deterministic.
	m.seq++
	turn.Timestamp = turn.Timestamp.Add(time.Duration(m.seq) * time.Microsecond)
	m.turns[turn.ID] = turn
	return turn, nil
}

func (m *memChatRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChatTurn, error) {
	out := []models.ChatTurn{}
	for _, t := range m.turns {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *memChatRepo) DeleteAllByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for id, t := range m.turns {
		if t.UserID == userID {
			delete(m.turns, id)
			n++
		}
	}
	return n, nil
}

func (m *memChatRepo) DeleteByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) error {
	t, ok := m.turns[id]
	if !ok || t.UserID != userID {
		return services.ErrChatNotFound
	}
	delete(m.turns, id)
	return nil
}

type recordingMailer struct {
	codes map[string]string // by recipient
	fail  bool
	sends int
}

func (m *recordingMailer) SendOTPEmail(to, code string) error {
	if m.fail {
		return errors.New("mail send rejected")
	}
	m.sends++
	m.codes[to] = code
	return nil
}

type stubGenerator struct {
	response string
	err      error
}

func (g *stubGenerator) Generate(ctx context.Context, message string, image *services.ImagePayload, imageURL string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type testEnv struct {
	server *httptest.Server
	mailer *recordingMailer
	gen    *stubGenerator
	users  *memUserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &memUserRepo{users: map[primitive.ObjectID]*models.User{}}
	chats := &memChatRepo{turns: map[primitive.ObjectID]*models.ChatTurn{}}
	mailer := &recordingMailer{codes: map[string]string{}}
	gen := &stubGenerator{response: "stubbed AI response"}

	authService := services.NewAuthService(users, mailer, []byte(testSecret))
	chatService := services.NewChatService(chats, gen)

	r := chi.NewRouter()
	routes.SetupRoutes(r,
		handlers.NewAuthHandler(authService, users, nil),
		handlers.NewChatHandler(chatService),
		middleware.RequireAuth([]byte(testSecret), users),
	)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, mailer: mailer, gen: gen, users: users}
}

// sessionCookie extracts the session cookie from a login response.
func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}
