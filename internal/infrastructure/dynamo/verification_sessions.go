package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-label-api/internal/domain"
)

// VerificationSessionRepo stores verification sessions in DynamoDB so every
// API instance sees the same sessions. It satisfies verification.Store.
// The table's TTL on expires_at is a backstop; SweepExpired does the timely removal.
type VerificationSessionRepo struct {
	client    api
	tableName string
}

func NewVerificationSessionRepo(client api, tableName string) *VerificationSessionRepo {
	return &VerificationSessionRepo{client: client, tableName: tableName}
}

func (r *VerificationSessionRepo) Put(ctx context.Context, s *domain.VerificationSession) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal verification session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *VerificationSessionRepo) Get(ctx context.Context, sessionID string) (*domain.VerificationSession, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrSessionID, sessionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification session not found: %w", domain.ErrNotFound)
	}
	var s domain.VerificationSession
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkUsed flips used from false to true in a single conditional write.
// Exactly one of several concurrent callers succeeds; the rest get
// domain.ErrAlreadyUsed, or domain.ErrNotFound if the item is gone.
func (r *VerificationSessionRepo) MarkUsed(ctx context.Context, sessionID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(attrSessionID, sessionID),
		UpdateExpression:    aws.String("SET #u = :true"),
		ConditionExpression: aws.String("attribute_exists(#id) AND #u = :false"),
		ExpressionAttributeNames: map[string]string{
			"#id": attrSessionID,
			"#u":  attrUsed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if len(ccf.Item) == 0 {
			return fmt.Errorf("verification session not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("verification session already used: %w", domain.ErrAlreadyUsed)
	}
	return err
}

func (r *VerificationSessionRepo) Remove(ctx context.Context, sessionID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrSessionID, sessionID),
	})
	return err
}

// Consume deletes a used session in one conditional write and returns the
// deleted item, so only one caller can consume a given session.
func (r *VerificationSessionRepo) Consume(ctx context.Context, sessionID string) (*domain.VerificationSession, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(attrSessionID, sessionID),
		ConditionExpression: aws.String("attribute_exists(#id) AND #u = :true"),
		ExpressionAttributeNames: map[string]string{
			"#id": attrSessionID,
			"#u":  attrUsed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("verified session not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var s domain.VerificationSession
	if err := attributevalue.UnmarshalMap(out.Attributes, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SweepExpired deletes every session whose expires_at is at or before now
// and returns how many were deleted. expires_at is rounded up at creation
// and now is truncated here, so a session is never swept before its TTL.
func (r *VerificationSessionRepo) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)}
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String("#e <= :now"),
		ProjectionExpression:      aws.String("#id"),
		ExpressionAttributeNames:  map[string]string{"#e": attrExpiresAt, "#id": attrSessionID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":now": cutoff},
	})
	removed := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return removed, err
		}
		for _, item := range out.Items {
			idAttr, ok := item[attrSessionID].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName:                 aws.String(r.tableName),
				Key:                       strKey(attrSessionID, idAttr.Value),
				ConditionExpression:       aws.String("#e <= :now"),
				ExpressionAttributeNames:  map[string]string{"#e": attrExpiresAt},
				ExpressionAttributeValues: map[string]types.AttributeValue{":now": cutoff},
			})
			if isConditionFailed(err) {
				continue
			}
			if err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
