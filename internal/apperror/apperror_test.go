package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage(cause)

	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, cause), "the adapter error stays reachable through Unwrap")
	assert.Equal(t, "media storage is unavailable", err.Error(), "the client message never carries the cause")
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := Persistence(cause)

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
}

func TestTooLargeDistinctFromValidation(t *testing.T) {
	err := TooLarge("clip", "over the cap")
	assert.True(t, errors.Is(err, ErrTooLarge))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("clip", 42)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "clip not found with id 42", err.Error())
}
