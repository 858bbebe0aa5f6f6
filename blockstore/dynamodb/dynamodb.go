package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/blockcache/blockstore"
)

// ErrInvalidKey is returned for keys without a "device/" component.
var ErrInvalidKey = errors.New("dynamodb: key must have the form device/block")

// API is the subset of the DynamoDB client used by Client.
// *dynamodb.Client satisfies it.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client implements object.Client on a DynamoDB table, one item per block.
//
// Table schema:
//   - Partition key: device (string) - the device name
//   - Sort key: block (string) - the fixed-width hex block number
//   - Attribute data (binary) - the encoded block
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name blockcache-blocks \
//	  --attribute-definitions AttributeName=device,AttributeType=S AttributeName=block,AttributeType=S \
//	  --key-schema AttributeName=device,KeyType=HASH AttributeName=block,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
//
// Items are limited to 400KB, which bounds the usable block size.
type Client struct {
	api   API
	table string
}

// NewClient creates a client for table.
func NewClient(api API, table string) *Client {
	return &Client{api: api, table: table}
}

// Get implements object.Client.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	device, block, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]types.AttributeValue{
			"device": &types.AttributeValueMemberS{Value: device},
			"block":  &types.AttributeValueMemberS{Value: block},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb: get %s: %w", key, err)
	}
	if len(resp.Item) == 0 {
		return nil, blockstore.ErrNotFound
	}

	data, ok := resp.Item["data"].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("dynamodb: item %s has no binary data attribute", key)
	}
	return data.Value, nil
}

// Put implements object.Client.
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	device, block, err := splitKey(key)
	if err != nil {
		return err
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item: map[string]types.AttributeValue{
			"device": &types.AttributeValueMemberS{Value: device},
			"block":  &types.AttributeValueMemberS{Value: block},
			"data":   &types.AttributeValueMemberB{Value: data},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb: put %s: %w", key, err)
	}
	return nil
}

// List implements object.Client. prefix must start with "device/".
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	device, blockPrefix, err := splitKey(prefix)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("device = :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: device},
		},
		ProjectionExpression: aws.String("#b"),
		ExpressionAttributeNames: map[string]string{
			"#b": "block",
		},
	}
	if blockPrefix != "" {
		input.KeyConditionExpression = aws.String("device = :d AND begins_with(#b, :p)")
		input.ExpressionAttributeValues[":p"] = &types.AttributeValueMemberS{Value: blockPrefix}
	}

	var keys []string
	paginator := dynamodb.NewQueryPaginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: list %s: %w", prefix, err)
		}
		for _, item := range page.Items {
			if b, ok := item["block"].(*types.AttributeValueMemberS); ok {
				keys = append(keys, device+"/"+b.Value)
			}
		}
	}
	// Sort keys come back in order.
	return keys, nil
}

func splitKey(key string) (string, string, error) {
	device, block, ok := strings.Cut(key, "/")
	if !ok || device == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return device, block, nil
}
