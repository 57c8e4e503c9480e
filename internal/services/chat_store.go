package services

import (
	"context"

	"github.com/echomind/echomind-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatStore is the data access layer over the chats collection. Every query
// filters by owner, so a turn is never visible outside the user who created it.
type ChatStore struct {
	col *mongo.Collection
}

func NewChatStore(db *mongo.Database) *ChatStore {
	return &ChatStore{col: db.Collection("chats")}
}

func (s *ChatStore) Insert(ctx context.Context, turn *models.ChatTurn) (*models.ChatTurn, error) {
	res, err := s.col.InsertOne(ctx, turn)
	if err != nil {
		return nil, err
	}
	turn.ID = res.InsertedID.(primitive.ObjectID)
	return turn, nil
}

// ListByUser returns all turns owned by userID, oldest first. The ascending
// order is what the frontend renders chronologically.
func (s *ChatStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChatTurn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cur, err := s.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	turns := []models.ChatTurn{}
	if err := cur.All(ctx, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// DeleteAllByUser removes every turn owned by userID and returns the count.
// Zero is a valid outcome, not an error.
func (s *ChatStore) DeleteAllByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByIDAndUser deletes a single turn only when it is owned by userID.
// An existing turn owned by someone else is indistinguishable from a missing one.
func (s *ChatStore) DeleteByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrChatNotFound
	}
	return nil
}
