package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceErrorMatching(t *testing.T) {
	err := notFound("Booking with ID %d not found", 7)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Booking with ID 7 not found", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestInternalWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := internal("failed to create booking", cause)

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection reset")

	kept := internal("outer", forbidden("nope"))
	assert.Equal(t, KindForbidden, KindOf(kept))

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
