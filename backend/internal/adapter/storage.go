package adapter

import (
	"context"

	"github.com/jun/chatmark/backend/internal/model"
)

// EmojiStore persists custom emoji.
type EmojiStore interface {
	// ListEmoji returns every custom emoji ordered by name.
	ListEmoji(ctx context.Context) ([]model.CustomEmoji, error)

	// GetEmoji returns the emoji with the given ID, or ErrNotFound.
	GetEmoji(ctx context.Context, id string) (*model.CustomEmoji, error)

	// CreateEmoji stores e under a new ID. It returns ErrConflict when the
	// name is taken.
	CreateEmoji(ctx context.Context, e model.CustomEmoji) (*model.CustomEmoji, error)

	// DeleteEmoji removes the emoji. Only its creator may delete it;
	// anyone else gets ErrForbidden.
	DeleteEmoji(ctx context.Context, id, userID string) error
}
