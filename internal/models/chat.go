package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatTurn is one user message and the AI response it produced. Turns are only
// written after a successful provider call, so AIResponse is never empty.
type ChatTurn struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ThreadID    *string            `bson:"threadId" json:"threadId"`
	UserMessage string             `bson:"userMessage" json:"userMessage"`
	AIResponse  string             `bson:"aiResponse" json:"aiResponse"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
