package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"cg-sahayak/internal/domain"
)

const (
	pkPrefixSession = "SESSION#"
	skMeta          = "META#"
	skPrefixMsg     = "MSG#"

	// Session creation defaults, shown in the UI until renamed.
	DefaultSessionName = "नई बातचीत"
	DefaultLanguage    = "chhattisgarhi"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client wraps a DynamoDB table holding chat sessions and their messages.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// sessionPK returns the partition key for a session and everything under it.
func sessionPK(sessionID string) string {
	return pkPrefixSession + sessionID
}

// msgSK orders messages chronologically; the id suffix keeps the key unique
// when both halves of an exchange carry the same timestamp.
func msgSK(ts time.Time, id string) string {
	return skPrefixMsg + ts.UTC().Format(time.RFC3339Nano) + "#" + id
}

// newMessage constructs a ChatMessage with a fresh id and timestamp. Tone,
// Length and AudioRef are set by the caller where they apply.
func newMessage(sessionID, role, text string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// CreateSession writes a new session record and returns it. The identifier
// is generated here; callers never pick their own.
func (c *Client) CreateSession(ctx context.Context, name, language, userID string) (domain.ChatSession, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultSessionName
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	now := time.Now().UTC()
	session := domain.ChatSession{
		ID:         uuid.NewString(),
		Name:       name,
		Language:   language,
		UserID:     userID,
		CreatedAt:  now,
		LastActive: now,
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                sessionItem(session),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return domain.ChatSession{}, fmt.Errorf("repository: CreateSession: %w", err)
	}
	return session, nil
}

// AppendMessages persists an exchange's messages and bumps the session's
// last-active timestamp in a single transaction: either every message of the
// exchange lands or none does, so a failure can never leave a dangling
// assistant message. The transaction requires the session record to exist.
func (c *Client) AppendMessages(ctx context.Context, sessionID string, msgs []domain.ChatMessage) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("repository: AppendMessages: session id is required")
	}
	if len(msgs) == 0 {
		return errors.New("repository: AppendMessages: at least one message is required")
	}

	items := make([]types.TransactWriteItem, 0, len(msgs)+1)
	for _, msg := range msgs {
		if msg.ID == "" || msg.Role == "" {
			return errors.New("repository: AppendMessages: message id and role are required")
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(c.tableName),
				Item:                messageItem(sessionID, msg),
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			},
		})
	}
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(c.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
				"SK": &types.AttributeValueMemberS{Value: skMeta},
			},
			UpdateExpression:    aws.String("SET last_active = :ts"),
			ConditionExpression: aws.String("attribute_exists(PK)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":ts": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
			},
		},
	})

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return fmt.Errorf("repository: AppendMessages: %w", err)
	}
	return nil
}

// GetRecentMessages returns up to limit of the newest messages of a session
// in chronological order.
func (c *Client) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixMsg},
		},
		// Read newest first so LIMIT favors the most recent turns.
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetRecentMessages query: %w", err)
	}

	msgs := make([]domain.ChatMessage, 0, len(out.Items))
	for _, item := range out.Items {
		msg, err := itemToMessage(item)
		if err != nil {
			return nil, fmt.Errorf("repository: GetRecentMessages unmarshal: %w", err)
		}
		msgs = append(msgs, msg)
	}
	// Reverse to chronological order before returning.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func sessionItem(s domain.ChatSession) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: sessionPK(s.ID)},
		"SK":           &types.AttributeValueMemberS{Value: skMeta},
		"id":           &types.AttributeValueMemberS{Value: s.ID},
		"session_name": &types.AttributeValueMemberS{Value: s.Name},
		"language":     &types.AttributeValueMemberS{Value: s.Language},
		"created_at":   &types.AttributeValueMemberS{Value: s.CreatedAt.Format(time.RFC3339)},
		"last_active":  &types.AttributeValueMemberS{Value: s.LastActive.Format(time.RFC3339)},
	}
	if s.UserID != "" {
		item["user_id"] = &types.AttributeValueMemberS{Value: s.UserID}
	}
	return item
}

func messageItem(sessionID string, msg domain.ChatMessage) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
		"SK":           &types.AttributeValueMemberS{Value: msgSK(msg.CreatedAt, msg.ID)},
		"id":           &types.AttributeValueMemberS{Value: msg.ID},
		"session_id":   &types.AttributeValueMemberS{Value: sessionID},
		"role":         &types.AttributeValueMemberS{Value: msg.Role},
		"message_text": &types.AttributeValueMemberS{Value: msg.Text},
		"created_at":   &types.AttributeValueMemberS{Value: msg.CreatedAt.UTC().Format(time.RFC3339Nano)},
	}
	if msg.UserID != "" {
		item["user_id"] = &types.AttributeValueMemberS{Value: msg.UserID}
	}
	if msg.Tone != "" {
		item["emotion"] = &types.AttributeValueMemberS{Value: msg.Tone}
	}
	if msg.Length != "" {
		item["response_length"] = &types.AttributeValueMemberS{Value: msg.Length}
	}
	if msg.AudioRef != "" {
		item["audio_ref"] = &types.AttributeValueMemberS{Value: msg.AudioRef}
	}
	return item
}

// itemToMessage converts a DynamoDB attribute map to a ChatMessage.
func itemToMessage(item map[string]types.AttributeValue) (domain.ChatMessage, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.ChatMessage{}, err
	}
	sessionID, err := strAttr(item, "session_id")
	if err != nil {
		return domain.ChatMessage{}, err
	}
	role, err := strAttr(item, "role")
	if err != nil {
		return domain.ChatMessage{}, err
	}
	text, err := strAttr(item, "message_text")
	if err != nil {
		return domain.ChatMessage{}, err
	}
	createdRaw, err := strAttr(item, "created_at")
	if err != nil {
		return domain.ChatMessage{}, err
	}
	created, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("parse created_at: %w", err)
	}

	userID, _ := strAttr(item, "user_id")         // optional
	tone, _ := strAttr(item, "emotion")           // optional
	length, _ := strAttr(item, "response_length") // optional
	audioRef, _ := strAttr(item, "audio_ref")     // optional

	return domain.ChatMessage{
		ID:        id,
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Text:      text,
		Tone:      tone,
		Length:    length,
		AudioRef:  audioRef,
		CreatedAt: created,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("attribute %q is not a string", key)
	}
	return s.Value, nil
}
