package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	err := AlreadyPaired()
	assert.True(t, errors.Is(err, ErrAlreadyPaired))
	assert.False(t, errors.Is(err, ErrNoPartner))
}

func TestWrappedSentinelMatching(t *testing.T) {
	// services wrap with context; errors.Is must still reach the sentinel
	err := fmt.Errorf("creating pair: %w", SelfPairing())
	assert.True(t, errors.Is(err, ErrSelfPairing))

	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "cannot pair with yourself", appErr.Message)
}

func TestValidationCarriesField(t *testing.T) {
	err := Validation("value", "value must be yes, no or maybe")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "value", err.Field)
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("question", 42)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "question 42 not found", err.Error())
}
