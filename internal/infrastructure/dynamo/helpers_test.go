package dynamo

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-blog-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "username"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"email":        "a@b.com",
		"verify_email": true,
		"username":     "alice",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: email < username < verify_email
	assert.Equal(t, "email", ue1.Names["#f0"])
	assert.Equal(t, "username", ue1.Names["#f1"])
	assert.Equal(t, "verify_email", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_NilBecomesRemove(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"email":     "a@b.com",
		"new_email": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0 REMOVE #f1", ue.Expr)
	assert.Equal(t, "new_email", ue.Names["#f1"])
	assert.Len(t, ue.Values, 1)
}

func TestBuildUpdateExpr_OnlyRemoves_NoValues(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"new_phone": nil})
	require.NoError(t, err)
	assert.Equal(t, "REMOVE #f0", ue.Expr)
	assert.Nil(t, ue.Values)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"verify_phone": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestIdentifierKey(t *testing.T) {
	assert.Equal(t, "email#a@b.com", identifierKey(domain.MethodEmail, "a@b.com"))
	assert.Equal(t, "username#alice", identifierKey(domain.MethodUsername, "alice"))
}

func TestIsConditionFailure(t *testing.T) {
	assert.True(t, isConditionFailure(&types.ConditionalCheckFailedException{}))
	assert.True(t, isConditionFailure(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}))
	assert.False(t, isConditionFailure(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
	}))
	assert.False(t, isConditionFailure(errors.New("boom")))
}
