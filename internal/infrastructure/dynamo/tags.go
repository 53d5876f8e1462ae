package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/cursor"
)

// TagRepo provides typed DynamoDB operations for the tags table.
type TagRepo struct {
	client    api
	tableName string
}

func NewTagRepo(client api, tableName string) *TagRepo {
	return &TagRepo{client: client, tableName: tableName}
}

// Create inserts a new tag and fails with domain.ErrConflict if the id is taken.
func (r *TagRepo) Create(ctx context.Context, t *domain.Tag) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal tag: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": attrTagID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("tag %s already exists: %w", t.TagID, domain.ErrConflict)
	}
	return err
}

func (r *TagRepo) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrTagID, tagID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("tag not found: %w", domain.ErrNotFound)
	}
	var t domain.Tag
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Activate writes t over an existing inactive tag. Two concurrent claims on
// the same tag cannot both succeed: the loser gets domain.ErrConflict.
func (r *TagRepo) Activate(ctx context.Context, t *domain.Tag) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal tag: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       aws.String("attribute_exists(#id) AND #a = :false"),
		ExpressionAttributeNames:  map[string]string{"#id": attrTagID, "#a": attrActive},
		ExpressionAttributeValues: map[string]types.AttributeValue{":false": &types.AttributeValueMemberBOOL{Value: false}},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("tag %s is already active: %w", t.TagID, domain.ErrConflict)
	}
	return err
}

func (r *TagRepo) Update(ctx context.Context, tagID string, updates map[string]interface{}) error {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields[attrUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	ue.Names["#id"] = attrTagID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrTagID, tagID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("tag not found: %w", domain.ErrNotFound)
	}
	return err
}

// ListPage returns a page of tags. pageCursor is a base64-encoded tag_id used as
// ExclusiveStartKey; the returned cursor is empty on the last page.
func (r *TagRepo) ListPage(ctx context.Context, limit int32, pageCursor string) ([]domain.Tag, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if pageCursor != "" {
		tagID, err := cursor.Decode(pageCursor)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = strKey(attrTagID, tagID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	tags := []domain.Tag{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &tags); err != nil {
		return nil, "", err
	}
	next := ""
	if v, ok := out.LastEvaluatedKey[attrTagID].(*types.AttributeValueMemberS); ok {
		next = cursor.Encode(v.Value)
	}
	return tags, next, nil
}
