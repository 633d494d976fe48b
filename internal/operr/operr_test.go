package operr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrappedError(t *testing.T) {
	base := errors.New("disk full")
	err := Wrap(KIND_STORAGE, base, "could not write %s", "applications.json")

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KIND_STORAGE, kind)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "applications.json")
}

func TestKindSurvivesFurtherWrapping(t *testing.T) {
	err := fmt.Errorf("outer context: %w", New(KIND_TIMEOUT, "no reply"))
	assert.True(t, IsKind(err, KIND_TIMEOUT))
	assert.False(t, IsKind(err, KIND_VALIDATION))
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsKind(nil, KIND_STORAGE))
}
