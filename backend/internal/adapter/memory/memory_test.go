package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jun/chatmark/backend/internal/adapter"
	"github.com/jun/chatmark/backend/internal/model"
)

// fakeDynamo keeps items in a map keyed by "pk".
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	table string
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func pkOf(m map[string]types.AttributeValue) string {
	if s, ok := m["pk"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table = *in.TableName
	out := &dynamodb.ScanOutput{}
	for _, item := range f.items {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[pkOf(in.Key)]}, nil
}

// TransactWriteItems applies puts and deletes atomically, honouring
// attribute_not_exists(pk) conditions on puts.
func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, it := range in.TransactItems {
		reasons[i].Code = aws.String("None")
		if it.Put != nil && it.Put.ConditionExpression != nil {
			if _, exists := f.items[pkOf(it.Put.Item)]; exists {
				reasons[i].Code = aws.String("ConditionalCheckFailed")
				failed = true
			}
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{CancellationReasons: reasons}
	}

	for _, it := range in.TransactItems {
		switch {
		case it.Put != nil:
			f.items[pkOf(it.Put.Item)] = it.Put.Item
		case it.Delete != nil:
			delete(f.items, pkOf(it.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

// stores returns the map-backed store and a DynamoDB-backed one so every
// test runs against both code paths.
func stores() map[string]*EmojiStore {
	return map[string]*EmojiStore{
		"map":    NewEmojiStore(nil, ""),
		"dynamo": NewEmojiStore(newFakeDynamo(), "TestEmoji"),
	}
}

func TestEmojiStore_CreateAndList(t *testing.T) {
	for name, s := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := s.CreateEmoji(ctx, model.CustomEmoji{Name: "partyparrot", CreatorID: "user1", ImageURL: "https://x/p.gif"})
			if err != nil {
				t.Fatalf("CreateEmoji failed: %v", err)
			}
			if created.ID == "" {
				t.Error("Expected an ID to be assigned")
			}
			if created.CreatedAt.IsZero() {
				t.Error("Expected CreatedAt to be set")
			}

			if _, err := s.CreateEmoji(ctx, model.CustomEmoji{Name: "blobcat", CreatorID: "user2"}); err != nil {
				t.Fatalf("CreateEmoji failed: %v", err)
			}

			list, err := s.ListEmoji(ctx)
			if err != nil {
				t.Fatalf("ListEmoji failed: %v", err)
			}
			if len(list) != 2 {
				t.Fatalf("Expected 2 emoji, got %d", len(list))
			}
			if list[0].Name != "blobcat" || list[1].Name != "partyparrot" {
				t.Errorf("Expected emoji sorted by name, got %s, %s", list[0].Name, list[1].Name)
			}

			got, err := s.GetEmoji(ctx, created.ID)
			if err != nil {
				t.Fatalf("GetEmoji failed: %v", err)
			}
			if got.ImageURL != "https://x/p.gif" || got.CreatorID != "user1" {
				t.Errorf("Unexpected emoji: %+v", got)
			}
		})
	}
}

func TestEmojiStore_DuplicateName(t *testing.T) {
	for name, s := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := s.CreateEmoji(ctx, model.CustomEmoji{Name: "dup", CreatorID: "user1"}); err != nil {
				t.Fatalf("CreateEmoji failed: %v", err)
			}
			_, err := s.CreateEmoji(ctx, model.CustomEmoji{Name: "dup", CreatorID: "user2"})
			if !errors.Is(err, adapter.ErrConflict) {
				t.Errorf("Expected ErrConflict, got %v", err)
			}
		})
	}
}

func TestEmojiStore_GetEmoji_NotFound(t *testing.T) {
	for name, s := range stores() {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetEmoji(context.Background(), "nonexistent-id")
			if err != adapter.ErrNotFound {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestEmojiStore_Delete(t *testing.T) {
	for name, s := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			e, err := s.CreateEmoji(ctx, model.CustomEmoji{Name: "gone", CreatorID: "owner"})
			if err != nil {
				t.Fatalf("CreateEmoji failed: %v", err)
			}

			if err := s.DeleteEmoji(ctx, e.ID, "someone-else"); err != adapter.ErrForbidden {
				t.Errorf("Expected ErrForbidden, got %v", err)
			}
			if err := s.DeleteEmoji(ctx, e.ID, "owner"); err != nil {
				t.Fatalf("DeleteEmoji failed: %v", err)
			}
			if _, err := s.GetEmoji(ctx, e.ID); err != adapter.ErrNotFound {
				t.Errorf("Expected ErrNotFound after delete, got %v", err)
			}
			if err := s.DeleteEmoji(ctx, e.ID, "owner"); err != adapter.ErrNotFound {
				t.Errorf("Expected ErrNotFound for second delete, got %v", err)
			}
		})
	}
}

func TestEmojiStore_TableName(t *testing.T) {
	t.Setenv("EMOJI_TABLE", "FromEnv")

	fake := newFakeDynamo()
	s := NewEmojiStore(fake, "")
	if _, err := s.ListEmoji(context.Background()); err != nil {
		t.Fatalf("ListEmoji failed: %v", err)
	}
	if fake.table != "FromEnv" {
		t.Errorf("Expected table 'FromEnv', got '%s'", fake.table)
	}
}

func TestEmojiStore_CreatedAtUsesClock(t *testing.T) {
	s := NewEmojiStore(nil, "")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	e, err := s.CreateEmoji(context.Background(), model.CustomEmoji{Name: "clock"})
	if err != nil {
		t.Fatalf("CreateEmoji failed: %v", err)
	}
	if !e.CreatedAt.Equal(fixed) {
		t.Errorf("Expected CreatedAt %v, got %v", fixed, e.CreatedAt)
	}
}

func TestEmojiStore_NameReservedConcurrently(t *testing.T) {
	fake := newFakeDynamo()
	s := NewEmojiStore(fake, "TestEmoji")
	ctx := context.Background()

	// Another writer reserved the name after our list but before our write.
	fake.items[nameKey("racer")] = map[string]types.AttributeValue{
		"pk":   &types.AttributeValueMemberS{Value: nameKey("racer")},
		"id":   &types.AttributeValueMemberS{Value: "other-id"},
		"name": &types.AttributeValueMemberS{Value: "racer"},
	}

	_, err := s.CreateEmoji(ctx, model.CustomEmoji{Name: "racer", CreatorID: "user1"})
	if !errors.Is(err, adapter.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if len(fake.items) != 1 {
		t.Errorf("Expected the failed create to write nothing, got %d items", len(fake.items))
	}

	list, err := s.ListEmoji(ctx)
	if err != nil {
		t.Fatalf("ListEmoji failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected name reservations to be hidden from the list, got %+v", list)
	}
}

func TestEmojiStore_DeleteReleasesName(t *testing.T) {
	fake := newFakeDynamo()
	s := NewEmojiStore(fake, "TestEmoji")
	ctx := context.Background()

	e, err := s.CreateEmoji(ctx, model.CustomEmoji{Name: "again", CreatorID: "owner"})
	if err != nil {
		t.Fatalf("CreateEmoji failed: %v", err)
	}
	if len(fake.items) != 2 {
		t.Fatalf("Expected emoji and name items, got %d", len(fake.items))
	}
	if err := s.DeleteEmoji(ctx, e.ID, "owner"); err != nil {
		t.Fatalf("DeleteEmoji failed: %v", err)
	}
	if len(fake.items) != 0 {
		t.Errorf("Expected delete to remove both items, got %d", len(fake.items))
	}
	if _, err := s.CreateEmoji(ctx, model.CustomEmoji{Name: "again", CreatorID: "owner"}); err != nil {
		t.Errorf("Expected name to be reusable after delete, got %v", err)
	}
}
