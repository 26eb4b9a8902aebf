package contextstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"cg-sahayak/internal/domain"
)

// Partition keys of the two grounding corpora. Rows are keyed by an
// RFC3339 timestamp sort key so a newest-first query yields the most
// recent observations.
const (
	pkCulture = "CULTURE"
	pkWeather = "WEATHER"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client reads the grounding corpora. It is strictly read-only: the site's
// ingestion jobs own the table contents.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new context store Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("contextstore: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("contextstore: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// FetchCulture returns up to limit of the most recent cultural facts as
// "title: content" snippets.
func (c *Client) FetchCulture(ctx context.Context, limit int) ([]domain.ContextSnippet, error) {
	items, err := c.fetchRecent(ctx, pkCulture, limit)
	if err != nil {
		return nil, fmt.Errorf("contextstore: FetchCulture: %w", err)
	}

	snippets := make([]domain.ContextSnippet, 0, len(items))
	for _, item := range items {
		title, err := strAttr(item, "title")
		if err != nil {
			return nil, fmt.Errorf("contextstore: FetchCulture: %w", err)
		}
		content, err := strAttr(item, "content")
		if err != nil {
			return nil, fmt.Errorf("contextstore: FetchCulture: %w", err)
		}
		snippets = append(snippets, domain.ContextSnippet{Label: title, Content: content})
	}
	return snippets, nil
}

// FetchWeather returns up to limit of the most recent weather observations as
// "district: temperature°C, condition" snippets.
func (c *Client) FetchWeather(ctx context.Context, limit int) ([]domain.ContextSnippet, error) {
	items, err := c.fetchRecent(ctx, pkWeather, limit)
	if err != nil {
		return nil, fmt.Errorf("contextstore: FetchWeather: %w", err)
	}

	snippets := make([]domain.ContextSnippet, 0, len(items))
	for _, item := range items {
		district, err := strAttr(item, "district_name")
		if err != nil {
			return nil, fmt.Errorf("contextstore: FetchWeather: %w", err)
		}
		temperature, err := numAttr(item, "temperature")
		if err != nil {
			return nil, fmt.Errorf("contextstore: FetchWeather: %w", err)
		}
		condition, err := strAttr(item, "weather_condition")
		if err != nil {
			return nil, fmt.Errorf("contextstore: FetchWeather: %w", err)
		}
		snippets = append(snippets, domain.ContextSnippet{
			Label:   district,
			Content: temperature + "°C, " + condition,
		})
	}
	return snippets, nil
}

// fetchRecent queries one corpus partition newest-first with a row cap.
func (c *Client) fetchRecent(ctx context.Context, pk string, limit int) ([]map[string]types.AttributeValue, error) {
	if limit <= 0 {
		return nil, nil
	}

	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", pk, err)
	}
	return out.Items, nil
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

// numAttr returns the decimal text of a number attribute, unparsed; weather
// temperatures are interpolated into prompt text, never computed on.
func numAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return "", fmt.Errorf("attribute %q is not a number", key)
	}
	return n.Value, nil
}
