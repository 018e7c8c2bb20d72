package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-blog-auth/internal/domain"
)

// OtpRepo stores the single OTP row of each user. PK: user_id.
type OtpRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOtpRepo(client *dynamodb.Client, tableName string) *OtpRepo {
	return &OtpRepo{client: client, tableName: tableName}
}

func (r *OtpRepo) Get(ctx context.Context, userID string) (*domain.Otp, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var o domain.Otp
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Upsert writes o unless the user holds an OTP that is still live at now.
// The check and the write are one conditional update, so two concurrent
// issues cannot both succeed. An expired row keeps its otp_id and is
// overwritten in place; o.OtpID is set to the id actually stored.
// created reports whether no row existed before.
func (r *OtpRepo) Upsert(ctx context.Context, o *domain.Otp, now time.Time) (created bool, err error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(attrUserID, o.UserID),
		UpdateExpression:    aws.String("SET #id = if_not_exists(#id, :id), #code = :code, #exp = :exp, #m = :method"),
		ConditionExpression: aws.String("attribute_not_exists(user_id) OR #exp <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#id":   "otp_id",
			"#code": "code",
			"#exp":  "expires_in",
			"#m":    "method",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id":     &types.AttributeValueMemberS{Value: o.OtpID},
			":code":   &types.AttributeValueMemberS{Value: o.Code},
			":exp":    unixSeconds(o.ExpiresIn),
			":method": &types.AttributeValueMemberS{Value: string(o.Method)},
			":now":    unixSeconds(now),
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		if isConditionFailure(err) {
			return false, fmt.Errorf("live otp exists: %w", domain.ErrConflict)
		}
		return false, err
	}
	if len(out.Attributes) == 0 {
		return true, nil
	}
	if prev, ok := out.Attributes["otp_id"].(*types.AttributeValueMemberS); ok {
		o.OtpID = prev.Value
	}
	return false, nil
}

func unixSeconds(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", t.Unix())}
}
