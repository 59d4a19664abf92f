package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jun/chatmark/backend/internal/adapter"
	"github.com/jun/chatmark/backend/internal/model"
)

// DynamoAPI is the subset of *dynamodb.Client methods used by EmojiStore.
type DynamoAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DefaultTableName is used when neither the constructor nor EMOJI_TABLE
// names a table.
const DefaultTableName = "CustomEmoji"

func getTableName() string {
	name := os.Getenv("EMOJI_TABLE")
	if name == "" {
		name = DefaultTableName
	}
	return name
}

const maxEmojiCount = 500

// nameKeyPrefix marks the items that reserve an emoji name. Each emoji is
// written together with its name item in one transaction, so two creates
// racing for the same name cannot both succeed.
const nameKeyPrefix = "name#"

func nameKey(name string) string {
	return nameKeyPrefix + name
}

// EmojiStore implements adapter.EmojiStore.
// If client is nil, it uses an in-memory map (for tests and the CLI).
// If client is set, it uses DynamoDB.
type EmojiStore struct {
	client DynamoAPI
	table  string

	// Fallback for tests
	emoji map[string]model.CustomEmoji
	mu    sync.RWMutex

	now func() time.Time
}

var _ adapter.EmojiStore = (*EmojiStore)(nil)

// EmojiItem is the DynamoDB record of a custom emoji.
type EmojiItem struct {
	PK        string    `dynamodbav:"pk"`
	ID        string    `dynamodbav:"id"`
	Name      string    `dynamodbav:"name"`
	CreatorID string    `dynamodbav:"creator_id"`
	ImageURL  string    `dynamodbav:"image_url"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

func (it EmojiItem) toModel() model.CustomEmoji {
	return model.CustomEmoji{
		ID:        it.ID,
		Name:      it.Name,
		CreatorID: it.CreatorID,
		ImageURL:  it.ImageURL,
		CreatedAt: it.CreatedAt,
	}
}

func itemFrom(e model.CustomEmoji) EmojiItem {
	return EmojiItem{
		PK:        e.ID,
		ID:        e.ID,
		Name:      e.Name,
		CreatorID: e.CreatorID,
		ImageURL:  e.ImageURL,
		CreatedAt: e.CreatedAt,
	}
}

// NewEmojiStore creates an EmojiStore. An empty table name falls back to
// EMOJI_TABLE and then DefaultTableName.
func NewEmojiStore(client DynamoAPI, table string) *EmojiStore {
	if table == "" {
		table = getTableName()
	}
	return &EmojiStore{
		client: client,
		table:  table,
		emoji:  make(map[string]model.CustomEmoji),
		now:    time.Now,
	}
}

func (s *EmojiStore) ListEmoji(ctx context.Context) ([]model.CustomEmoji, error) {
	if s.client == nil {
		return s.listEmojiMap(), nil
	}

	// Scan (the table only holds custom emoji, which are few)
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("NOT begins_with(pk, :name)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: nameKeyPrefix},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.table, err)
	}

	var items []EmojiItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal emoji: %w", err)
	}

	list := make([]model.CustomEmoji, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(it.PK, nameKeyPrefix) {
			continue
		}
		list = append(list, it.toModel())
	}
	sortByName(list)
	return list, nil
}

func (s *EmojiStore) GetEmoji(ctx context.Context, id string) (*model.CustomEmoji, error) {
	if s.client == nil {
		return s.getEmojiMap(id)
	}
	if strings.HasPrefix(id, nameKeyPrefix) {
		return nil, adapter.ErrNotFound
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get emoji %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, adapter.ErrNotFound
	}

	var item EmojiItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal emoji: %w", err)
	}
	e := item.toModel()
	return &e, nil
}

func (s *EmojiStore) CreateEmoji(ctx context.Context, e model.CustomEmoji) (*model.CustomEmoji, error) {
	existing, err := s.ListEmoji(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxEmojiCount {
		return nil, fmt.Errorf("emoji limit reached (max %d)", maxEmojiCount)
	}
	for _, other := range existing {
		if other.Name == e.Name {
			return nil, fmt.Errorf("emoji %q: %w", e.Name, adapter.ErrConflict)
		}
	}

	e.ID = uuid.New().String()
	e.CreatedAt = s.now().UTC()

	if s.client == nil {
		return s.createEmojiMap(e)
	}

	av, err := attributevalue.MarshalMap(itemFrom(e))
	if err != nil {
		return nil, fmt.Errorf("marshal emoji: %w", err)
	}

	guard := itemFrom(e)
	guard.PK = nameKey(e.Name)
	guardAV, err := attributevalue.MarshalMap(guard)
	if err != nil {
		return nil, fmt.Errorf("marshal emoji name: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.table),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(s.table),
				Item:                guardAV,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
		},
	})
	if conditionFailed(err) {
		return nil, fmt.Errorf("emoji %q: %w", e.Name, adapter.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("put emoji %s: %w", e.Name, err)
	}
	return &e, nil
}

func (s *EmojiStore) DeleteEmoji(ctx context.Context, id, userID string) error {
	e, err := s.GetEmoji(ctx, id)
	if err != nil {
		return err
	}
	if e.CreatorID != userID {
		return adapter.ErrForbidden
	}

	if s.client == nil {
		s.mu.Lock()
		delete(s.emoji, id)
		s.mu.Unlock()
		return nil
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(s.table),
				Key: map[string]types.AttributeValue{
					"pk": &types.AttributeValueMemberS{Value: id},
				},
			}},
			{Delete: &types.Delete{
				TableName: aws.String(s.table),
				Key: map[string]types.AttributeValue{
					"pk": &types.AttributeValueMemberS{Value: nameKey(e.Name)},
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("delete emoji %s: %w", id, err)
	}
	return nil
}

func (s *EmojiStore) listEmojiMap() []model.CustomEmoji {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.CustomEmoji, 0, len(s.emoji))
	for _, e := range s.emoji {
		list = append(list, e)
	}
	sortByName(list)
	return list
}

func (s *EmojiStore) getEmojiMap(id string) (*model.CustomEmoji, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.emoji[id]
	if !ok {
		return nil, adapter.ErrNotFound
	}
	return &e, nil
}

func (s *EmojiStore) createEmojiMap(e model.CustomEmoji) (*model.CustomEmoji, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the write lock; ListEmoji ran without it.
	for _, other := range s.emoji {
		if other.Name == e.Name {
			return nil, fmt.Errorf("emoji %q: %w", e.Name, adapter.ErrConflict)
		}
	}
	s.emoji[e.ID] = e
	return &e, nil
}

// conditionFailed reports whether a transaction was cancelled by one of its
// condition expressions.
func conditionFailed(err error) bool {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return false
	}
	for _, r := range canceled.CancellationReasons {
		if aws.ToString(r.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

func sortByName(list []model.CustomEmoji) {
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
}
