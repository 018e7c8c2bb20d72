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

// UserRepo stores users keyed by user_id. Username, email and phone are kept
// unique by a marker item per value in the identifiers table
// (identifier = "<column>#<value>"), written in the same transaction as the user.
type UserRepo struct {
	client           *dynamodb.Client
	tableName        string
	identifiersTable string
}

func NewUserRepo(client *dynamodb.Client, tableName, identifiersTable string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, identifiersTable: identifiersTable}
}

type identifierMarker struct {
	Identifier string `dynamodbav:"identifier"`
	UserID     string `dynamodbav:"user_id"`
}

func (r *UserRepo) putMarker(m domain.AuthMethod, value, userID string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(r.identifiersTable),
			Item: map[string]types.AttributeValue{
				attrIdentifier: &types.AttributeValueMemberS{Value: identifierKey(m, value)},
				attrUserID:     &types.AttributeValueMemberS{Value: userID},
			},
			// Re-putting a marker the user already owns is allowed.
			ConditionExpression:       aws.String("attribute_not_exists(identifier) OR user_id = :uid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		},
	}
}

func (r *UserRepo) deleteMarker(m domain.AuthMethod, value, userID string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName:                 aws.String(r.identifiersTable),
			Key:                       strKey(attrIdentifier, identifierKey(m, value)),
			ConditionExpression:       aws.String("attribute_not_exists(identifier) OR user_id = :uid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		},
	}
}

// Create writes u together with a marker for each identifier it carries.
// Returns domain.ErrConflict when any identifier is already taken.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	items := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(user_id)"),
		},
	}}
	for _, m := range []domain.AuthMethod{domain.MethodUsername, domain.MethodEmail, domain.MethodPhone} {
		if v := u.Identifier(m); v != "" {
			items = append(items, r.putMarker(m, v, u.UserID))
		}
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("user identifier taken: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getByMarker(ctx, domain.MethodUsername, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getByMarker(ctx, domain.MethodEmail, email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.getByMarker(ctx, domain.MethodPhone, phone)
}

// GetByIdentifier finds the user whose username, email or phone equals
// identifier, checked in that order.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	for _, m := range []domain.AuthMethod{domain.MethodUsername, domain.MethodEmail, domain.MethodPhone} {
		u, err := r.getByMarker(ctx, m, identifier)
		if err == nil {
			return u, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
}

func (r *UserRepo) getByMarker(ctx context.Context, m domain.AuthMethod, value string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.identifiersTable),
		Key:            strKey(attrIdentifier, identifierKey(m, value)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var marker identifierMarker
	if err := attributevalue.UnmarshalMap(out.Item, &marker); err != nil {
		return nil, err
	}
	return r.Get(ctx, marker.UserID)
}

// Update applies a partial update of non-identifier columns. A nil value
// removes the attribute.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields[attrUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailure(err) {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return err
}

// PromoteIdentifier sets the column for m to value. For email and phone it
// also marks the column verified and clears the staging field. The marker for
// the old value is released and the new one claimed in the same transaction.
func (r *UserRepo) PromoteIdentifier(ctx context.Context, userID string, m domain.AuthMethod, value string) error {
	u, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	updates := domain.PromoteFields(m, value)
	if updates == nil {
		return fmt.Errorf("cannot promote method %q: %w", m, domain.ErrBadRequest)
	}
	updates[attrUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{{
		Update: &types.Update{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey(attrUserID, userID),
			UpdateExpression:          aws.String(ue.Expr),
			ConditionExpression:       aws.String("attribute_exists(user_id)"),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		},
	}}
	if old := u.Identifier(m); old != value {
		items = append(items, r.putMarker(m, value, userID))
		if old != "" {
			items = append(items, r.deleteMarker(m, old, userID))
		}
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("%s already taken: %w", m, domain.ErrConflict)
		}
		return err
	}
	return nil
}
