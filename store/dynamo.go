package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes-api/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// timeLayout is a fixed-width RFC3339 UTC format so the GSI range key sorts
// lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoStore keeps notes in a single DynamoDB table keyed by id, with a GSI
// on user_id/updated_at for per-user listings.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewDynamoStore creates a DynamoStore over the given client.
func NewDynamoStore(client DynamoAPI, tableName, indexName string, logger *zap.Logger) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// noteItem is the stored document shape.
type noteItem struct {
	ID        string `dynamodbav:"id"`
	Title     string `dynamodbav:"title"`
	Content   string `dynamodbav:"content"`
	UserID    string `dynamodbav:"user_id"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func toItem(n models.Note) noteItem {
	return noteItem{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		UserID:    n.UserID,
		CreatedAt: n.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt: n.UpdatedAt.UTC().Format(timeLayout),
	}
}

// fromItem maps a stored document back to a note. Missing title, content or
// user_id attributes read as empty strings; unparseable timestamps read as
// zero times.
func fromItem(item noteItem) models.Note {
	createdAt, _ := time.Parse(timeLayout, item.CreatedAt)
	updatedAt, _ := time.Parse(timeLayout, item.UpdatedAt)
	return models.Note{
		ID:        item.ID,
		Title:     item.Title,
		Content:   item.Content,
		UserID:    item.UserID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func (s *DynamoStore) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (s *DynamoStore) Insert(ctx context.Context, note models.Note) (models.Note, error) {
	note.ID = uuid.NewString()

	item, err := attributevalue.MarshalMap(toItem(note))
	if err != nil {
		return models.Note{}, fmt.Errorf("marshal note: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return models.Note{}, fmt.Errorf("put note: %w", err)
	}

	s.logger.Debug("Inserted note",
		zap.String("id", note.ID),
		zap.String("user_id", note.UserID),
	)
	return note, nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (models.Note, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(id),
	})
	if err != nil {
		return models.Note{}, fmt.Errorf("get note: %w", err)
	}
	if len(out.Item) == 0 {
		return models.Note{}, ErrNoteNotFound
	}

	var item noteItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return models.Note{}, fmt.Errorf("unmarshal note: %w", err)
	}
	item.ID = id
	return fromItem(item), nil
}

func (s *DynamoStore) ListByUser(ctx context.Context, uid string) ([]models.Note, error) {
	keyCond := expression.Key("user_id").Equal(expression.Value(uid))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(s.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Range key is updated_at; newest first.
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}

	notes := make([]models.Note, 0, len(out.Items))
	for _, raw := range out.Items {
		var item noteItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal note: %w", err)
		}
		notes = append(notes, fromItem(item))
	}
	return notes, nil
}

func (s *DynamoStore) Update(ctx context.Context, id string, fields UpdateFields, updatedAt time.Time) error {
	upd := expression.Set(
		expression.Name("updated_at"),
		expression.Value(updatedAt.UTC().Format(timeLayout)),
	)
	if fields.Title != nil {
		upd = upd.Set(expression.Name("title"), expression.Value(*fields.Title))
	}
	if fields.Content != nil {
		upd = upd.Set(expression.Name("content"), expression.Value(*fields.Content))
	}

	// The item must still exist; a concurrent delete must not recreate it
	// as a partial document.
	cond := expression.AttributeExists(expression.Name("id"))

	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(id),
	})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// Ping writes and removes a probe document, exercising a full round-trip to
// the table.
func (s *DynamoStore) Ping(ctx context.Context) error {
	probe := map[string]types.AttributeValue{
		"id":         &types.AttributeValueMemberS{Value: "health-check-probe"},
		"updated_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(timeLayout)},
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      probe,
	}); err != nil {
		return fmt.Errorf("probe write: %w", err)
	}
	if err := s.Delete(ctx, "health-check-probe"); err != nil {
		return fmt.Errorf("probe cleanup: %w", err)
	}
	return nil
}
