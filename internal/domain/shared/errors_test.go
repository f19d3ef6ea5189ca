package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel by code", func(t *testing.T) {
		err := NewNotFoundError("Report 7 not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrValidation))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("render: %w", NewValidationError("bad period"))
		assert.True(t, errors.Is(err, ErrValidation))

		var de *DomainError
		assert.True(t, errors.As(err, &de))
		assert.Equal(t, "bad period", de.Message)
	})
}

func TestDomainError_Error(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDomainError(CodeDataShape, "missing value row", cause)

	assert.Equal(t, "missing value row: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestDomainError_IsValidation(t *testing.T) {
	assert.True(t, NewValidationError("x").IsValidation())
	assert.True(t, NewDomainError(CodeAmbiguousPath, "x").IsValidation())
	assert.True(t, NewNotImplementedError("x").IsValidation())
	assert.False(t, NewNotFoundError("x").IsValidation())
	assert.False(t, ErrDataShape.IsValidation())
}
