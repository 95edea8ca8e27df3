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
	"github.com/go-otp-api/internal/domain"
)

// otpItem is the table representation of a pending OTP.
// PK: email. expires_at doubles as the DynamoDB TTL attribute (Unix seconds).
type otpItem struct {
	Email     string `dynamodbav:"email"`
	ID        string `dynamodbav:"id"`
	Code      string `dynamodbav:"code"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// OTPStore keeps OTP records in a DynamoDB table, for deployments where
// several API instances must share the credential store.
type OTPStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPStore(client *dynamodb.Client, tableName string) *OTPStore {
	return &OTPStore{client: client, tableName: tableName}
}

func (r *OTPStore) Put(ctx context.Context, rec *domain.OTPRecord, ttl time.Duration) error {
	rec.ExpiresAt = time.Now().Add(ttl)
	item, err := attributevalue.MarshalMap(otpItem{
		Email:     rec.Email,
		ID:        rec.ID,
		Code:      rec.Code,
		ExpiresAt: rec.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	// PutItem replaces any prior record for the email in one write.
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp record: %w", domain.ErrNotFound)
	}
	var it otpItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	rec := toRecord(it)
	if !time.Now().Before(rec.ExpiresAt) {
		// Native TTL deletion lags; treat as absent.
		return nil, fmt.Errorf("otp record: %w", domain.ErrNotFound)
	}
	return rec, nil
}

func (r *OTPStore) Consume(ctx context.Context, email, code string) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	// Conditional delete keeps compare-and-delete atomic across instances.
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("email", email),
		ConditionExpression: aws.String("code = :code AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
			":now":  &types.AttributeValueMemberN{Value: now},
		},
	})
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return err
	}
	// Condition failed: absent, expired, or wrong code. A second read
	// decides which; the record may vanish in between, in which case
	// not-found is the honest answer anyway.
	rec, gerr := r.Get(ctx, email)
	if gerr != nil {
		return gerr
	}
	if rec.Code != code {
		return fmt.Errorf("otp for %s: %w", email, domain.ErrInvalidCode)
	}
	return fmt.Errorf("otp record: %w", domain.ErrNotFound)
}

func (r *OTPStore) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	return err
}

func (r *OTPStore) List(ctx context.Context) ([]domain.OTPRecord, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var items []otpItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	recs := make([]domain.OTPRecord, 0, len(items))
	now := time.Now()
	for _, it := range items {
		rec := toRecord(it)
		if now.Before(rec.ExpiresAt) {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

func toRecord(it otpItem) *domain.OTPRecord {
	return &domain.OTPRecord{
		ID:        it.ID,
		Email:     it.Email,
		Code:      it.Code,
		ExpiresAt: time.Unix(it.ExpiresAt, 0),
	}
}
