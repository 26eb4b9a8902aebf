package contextstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	queryOut    *dynamodb.QueryOutput
	queryErr    error
	lastQueryIn *dynamodb.QueryInput
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryIn = in
	return f.queryOut, f.queryErr
}

func cultureItem(title, content string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":      &types.AttributeValueMemberS{Value: pkCulture},
		"SK":      &types.AttributeValueMemberS{Value: "2026-08-28T10:00:00Z"},
		"title":   &types.AttributeValueMemberS{Value: title},
		"content": &types.AttributeValueMemberS{Value: content},
	}
}

func weatherItem(district, temp, condition string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":                &types.AttributeValueMemberS{Value: pkWeather},
		"SK":                &types.AttributeValueMemberS{Value: "2026-08-28T10:00:00Z"},
		"district_name":     &types.AttributeValueMemberS{Value: district},
		"temperature":       &types.AttributeValueMemberN{Value: temp},
		"weather_condition": &types.AttributeValueMemberS{Value: condition},
	}
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "context-table")
	require.NoError(t, err)
	return c
}

func TestFetchCulture_HappyPath(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		cultureItem("हरेली", "छत्तीसगढ़ के पहला तिहार"),
	}}}
	c := mustNewClient(t, db)

	snippets, err := c.FetchCulture(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	require.Equal(t, "हरेली", snippets[0].Label)
	require.Equal(t, "छत्तीसगढ़ के पहला तिहार", snippets[0].Content)

	require.Equal(t, "PK = :pk", *db.lastQueryIn.KeyConditionExpression)
	require.Equal(t, pkCulture, db.lastQueryIn.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value)
	require.False(t, *db.lastQueryIn.ScanIndexForward)
	require.Equal(t, int32(5), *db.lastQueryIn.Limit)
}

func TestFetchWeather_FormatsObservation(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		weatherItem("रायपुर", "32.5", "बादल"),
	}}}
	c := mustNewClient(t, db)

	snippets, err := c.FetchWeather(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	require.Equal(t, "रायपुर", snippets[0].Label)
	require.Equal(t, "32.5°C, बादल", snippets[0].Content)
	require.Equal(t, pkWeather, db.lastQueryIn.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, int32(3), *db.lastQueryIn.Limit)
}

func TestFetchCulture_EmptyResult(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{}}
	c := mustNewClient(t, db)
	snippets, err := c.FetchCulture(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, snippets)
}

func TestFetchCulture_QueryError(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("ResourceNotFoundException")}
	c := mustNewClient(t, db)
	_, err := c.FetchCulture(context.Background(), 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "FetchCulture")
}

func TestFetchWeather_QueryError(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("ResourceNotFoundException")}
	c := mustNewClient(t, db)
	_, err := c.FetchWeather(context.Background(), 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "FetchWeather")
}

func TestFetchCulture_MalformedItem(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkCulture},
	}
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}}
	c := mustNewClient(t, db)
	_, err := c.FetchCulture(context.Background(), 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "title")
}

func TestFetchWeather_NonNumericTemperature(t *testing.T) {
	item := weatherItem("रायपुर", "32", "साफ")
	item["temperature"] = &types.AttributeValueMemberS{Value: "32"}
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}}
	c := mustNewClient(t, db)
	_, err := c.FetchWeather(context.Background(), 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "temperature")
}

func TestFetchRecent_NonPositiveLimitSkipsQuery(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	snippets, err := c.FetchCulture(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, snippets)
	require.Nil(t, db.lastQueryIn)
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "context-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNew_EmptyTableName(t *testing.T) {
	_, err := New(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
