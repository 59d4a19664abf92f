package model

import (
	"time"

	"github.com/jun/chatmark/core/textformat"
)

// CustomEmoji represents a user-uploaded emoji stored in DynamoDB.
type CustomEmoji struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Name      string    `json:"name" dynamodbav:"name"`
	CreatorID string    `json:"creatorId" dynamodbav:"creator_id"`
	ImageURL  string    `json:"imageUrl" dynamodbav:"image_url"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// Render modes accepted by the render endpoint.
const (
	ModeChat     = "chat"
	ModeDocument = "document"
)

// RenderRequest represents the request body of POST /render.
type RenderRequest struct {
	Message string              `json:"message"`
	Mode    string              `json:"mode,omitempty"`
	Options textformat.Settings `json:"options"`
}

// CreateEmojiRequest represents the request body of POST /emoji.
type CreateEmojiRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}
