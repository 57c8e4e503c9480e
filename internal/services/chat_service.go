package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/echomind/echomind-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRepository is what ChatService needs from the chat store.
type ChatRepository interface {
	Insert(ctx context.Context, turn *models.ChatTurn) (*models.ChatTurn, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChatTurn, error)
	DeleteAllByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) error
}

// TextGenerator produces AI text from a message and/or image input.
type TextGenerator interface {
	Generate(ctx context.Context, message string, image *ImagePayload, imageURL string) (string, error)
}

// ChatService orchestrates chat turn creation and history/delete operations.
// The owner is always the authenticated user, never a client-supplied field.
type ChatService struct {
	chats ChatRepository
	ai    TextGenerator
}

func NewChatService(chats ChatRepository, ai TextGenerator) *ChatService {
	return &ChatService{chats: chats, ai: ai}
}

// CreateTurn generates an AI response for the given inputs and persists the
// turn. Nothing is written when the provider call fails.
func (s *ChatService) CreateTurn(ctx context.Context, userID primitive.ObjectID, message string, image *ImagePayload, imageURL, threadID string) (*models.ChatTurn, error) {
	if message == "" && image == nil && imageURL == "" {
		return nil, ErrEmptyPrompt
	}

	response, err := s.ai.Generate(ctx, message, image, imageURL)
	if err != nil {
		if errors.Is(err, ErrEmptyAIResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAI, err)
	}

	userMessage := message
	if userMessage == "" {
		if image != nil {
			mimeType := image.MIMEType
			if mimeType == "" {
				mimeType = "image/jpeg"
			}
			userMessage = fmt.Sprintf("[image:%s]", mimeType)
		} else {
			userMessage = fmt.Sprintf("[imageUrl:%s]", imageURL)
		}
	}

	turn := &models.ChatTurn{
		UserID:      userID,
		UserMessage: userMessage,
		AIResponse:  response,
		Timestamp:   time.Now().UTC(),
	}
	if threadID != "" {
		turn.ThreadID = &threadID
	}

	return s.chats.Insert(ctx, turn)
}

// History returns the user's turns oldest first.
func (s *ChatService) History(ctx context.Context, userID primitive.ObjectID) ([]models.ChatTurn, error) {
	return s.chats.ListByUser(ctx, userID)
}

// DeleteAll removes every turn owned by the user and returns the count.
func (s *ChatService) DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.chats.DeleteAllByUser(ctx, userID)
}

// DeleteByID removes one turn when it belongs to the user. A malformed id is
// reported the same way as a missing one.
func (s *ChatService) DeleteByID(ctx context.Context, userID primitive.ObjectID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrChatNotFound
	}
	return s.chats.DeleteByIDAndUser(ctx, oid, userID)
}
