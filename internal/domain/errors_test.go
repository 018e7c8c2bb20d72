package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesValueAndKind(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrInvalidData)

	assert.True(t, errors.Is(err, ErrInvalidData))
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrBadRequest))
	assert.Equal(t, "login: "+MsgInvalidData, err.Error())
}

func TestError_SameMessageDifferentKind(t *testing.T) {
	assert.True(t, errors.Is(ErrChangeTokenMissing, ErrBadRequest))
	assert.True(t, errors.Is(ErrExpiredCode, ErrUnauthorized))
	assert.False(t, errors.Is(ErrChangeTokenMissing, ErrExpiredCode))
}

func TestDispatchError_UnwrapsToInternalAndCause(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := &DispatchError{Provider: "SMTP", Err: cause}

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "SMTP: smtp: connection refused", err.Error())
}
