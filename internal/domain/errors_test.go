package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := NotFoundf("payment record %d not found", 42)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("handler: %w", Conflictf("already used"))
	assert.True(t, errors.Is(wrapped, ErrConflict))
}

func TestStorageErr_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := StorageErr("load payment record", cause)
	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "storage_error")
	assert.Contains(t, err.Error(), "load payment record")
}
