package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidation("bad input", nil)))
	assert.Equal(t, KindNotFound, KindOf(NewNotFound("missing", nil)))
	assert.Equal(t, KindConflict, KindOf(NewConflict("busy", nil)))
	assert.Equal(t, KindUpstream, KindOf(NewUpstream(SourceModel, "down", nil)))
	assert.Equal(t, KindPersistence, KindOf(NewPersistence("write failed", nil)))

	// Unclassified errors default to the conservative kind.
	assert.Equal(t, KindPersistence, KindOf(errors.New("plain")))
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := NewNotFound("missing", nil)
	wrapped := fmt.Errorf("handler: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindConflict))
}

func TestUpstreamSourcePreserved(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstream(SourceArtifactStore, "upload failed", cause)

	var appErr *AppError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &appErr))
	assert.Equal(t, SourceArtifactStore, appErr.Source)
	assert.ErrorIs(t, err, cause)
}

func TestErrorString(t *testing.T) {
	err := NewValidation("too short", nil)
	assert.Equal(t, "VALIDATION: too short", err.Error())

	withCause := NewPersistence("insert failed", errors.New("timeout"))
	assert.Contains(t, withCause.Error(), "insert failed")
	assert.Contains(t, withCause.Error(), "timeout")
}
