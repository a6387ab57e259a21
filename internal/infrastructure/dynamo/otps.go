// Package dynamo backs the OTP record store with a DynamoDB table so that
// every server instance sees the same pending codes. The table's TTL
// attribute is expires_at; native TTL deletion lags, so reads still check
// expiry and Sweep clears stragglers.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/noor-otp-service/internal/domain"
)

// OTPRepo stores pending OTP records. PK: email.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Put unconditionally replaces any pending record for the record's email.
func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Get returns the pending record for email. Records past expires_at are
// treated as absent and deleted best-effort, since table TTL only removes
// them eventually.
func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("no pending OTP for %s: %w", email, domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	if rec.IsExpired() {
		if err := r.Delete(ctx, email); err != nil {
			slog.Warn("failed to delete expired OTP record", "email", email, "err", err)
		}
		return nil, fmt.Errorf("OTP for %s expired: %w", email, domain.ErrNotFound)
	}
	return &rec, nil
}

// RecordFailure counts one failed verification against the record for
// email, provided its stored code is still code and the record is not past
// expiry. The condition makes the increment atomic across server instances:
// a re-issuance that lands after the caller's read fails the condition and
// the fresh code is left untouched. Returns the attempts remaining.
func (r *OTPRepo) RecordFailure(ctx context.Context, email, code string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("email", email),
		UpdateExpression:    aws.String("SET #a = #a + :one"),
		ConditionExpression: aws.String("#c = :code AND #ea >= :now"),
		ExpressionAttributeNames: map[string]string{
			"#a":  "attempts",
			"#c":  "code",
			"#ea": "expires_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":code": &types.AttributeValueMemberS{Value: code},
			":now":  &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, fmt.Errorf("no matching OTP for %s: %w", email, domain.ErrNotFound)
		}
		return 0, err
	}
	var upd struct {
		Attempts int `dynamodbav:"attempts"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &upd); err != nil {
		return 0, err
	}
	return domain.MaxAttempts - upd.Attempts, nil
}

// CompareAndDelete removes the record for email only while its stored code
// is still code, reporting whether anything was deleted. A failed condition
// (absent item or a different code) is not an error.
func (r *OTPRepo) CompareAndDelete(ctx context.Context, email, code string) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("email", email),
		ConditionExpression: aws.String("#c = :code"),
		ExpressionAttributeNames: map[string]string{
			"#c": "code",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes any record for email; DynamoDB deletes are no-ops when the
// item is absent.
func (r *OTPRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	return err
}

// Sweep scans for records past expiry and deletes them. Table TTL does the
// same job eventually; the sweep just bounds the lag window.
func (r *OTPRepo) Sweep(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	removed := 0

	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(r.tableName),
			FilterExpression:     aws.String("expires_at < :now"),
			ProjectionExpression: aws.String("email"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: now},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return removed, err
		}
		for _, item := range out.Items {
			var rec struct {
				Email string `dynamodbav:"email"`
			}
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				continue
			}
			if err := r.Delete(ctx, rec.Email); err != nil {
				return removed, err
			}
			removed++
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return removed, nil
}
