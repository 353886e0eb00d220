package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/namjco/sales-tracker/pkg/zerror"
)

func TestZError(t *testing.T) {
	base := zerror.NewValidationFailed("VALIDATION_FAILED", "validation error")

	t.Run("Should match predefined error after wrapping parent", func(t *testing.T) {
		cause := errors.New("name is blank")
		err := fmt.Errorf("add product: %w", base.WrapParent(cause))

		assert.ErrorIs(t, err, base)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Should not match a different code", func(t *testing.T) {
		other := zerror.NewInternalServerError("STORE_FAILED", "store failed")
		assert.NotErrorIs(t, base, other)
	})

	t.Run("Should expose status and code through errors.As", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", base)

		var zErr zerror.ZError
		assert.True(t, errors.As(err, &zErr))
		assert.Equal(t, zerror.StatusValidationFailed, zErr.Status())
		assert.Equal(t, "VALIDATION_FAILED", zErr.Code())
		assert.Equal(t, "validation error", zErr.Msg())
	})

	t.Run("Should keep predefined error when wrapping nil", func(t *testing.T) {
		assert.Nil(t, base.WrapParent(nil).Parent())
	})
}
