package adapter

import (
	"context"
	"fmt"

	"github.com/jun/chatmark/core/emoji"
)

// LoadEmojiMap builds the emoji map used while rendering: the system emoji
// plus every custom emoji in store.
func LoadEmojiMap(ctx context.Context, store EmojiStore) (*emoji.Map, error) {
	if store == nil {
		return emoji.NewMap(), nil
	}

	list, err := store.ListEmoji(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom emoji: %w", err)
	}

	custom := make([]emoji.Emoji, 0, len(list))
	for _, e := range list {
		custom = append(custom, emoji.Emoji{
			ID:       e.ID,
			Name:     e.Name,
			ImageURL: e.ImageURL,
		})
	}
	return emoji.NewMap(custom...), nil
}
