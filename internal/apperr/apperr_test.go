package apperr

import (
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("empty_cart", "Cart is empty")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("lookup: %w", NotFound("order_not_found", "missing"))))
	assert.Equal(t, KindPersistence, KindOf(errors.New("plain")))
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence("write orders", cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindPersistence))
	assert.Equal(t, "persistence_failure", CodeOf(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestCodeOfForeignError(t *testing.T) {
	assert.Equal(t, "internal_error", CodeOf(errors.New("boom")))
	assert.False(t, Is(errors.New("boom"), KindValidation))
}
