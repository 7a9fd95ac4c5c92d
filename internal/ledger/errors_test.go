package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := NewValidationError("score must be between %d and %d", -5, 5)
	assert.Equal(t, "VALIDATION: score must be between -5 and 5", err.Error())
}

func TestCodeOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("submit vouch: %w", NewSelfVouchError())
	assert.Equal(t, ErrCodeSelfVouch, CodeOf(err))
}

func TestCodeOf_NonLedgerError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain failure")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsConflict(NewConflictError("dup")))
	assert.False(t, IsConflict(NewNotFoundError("missing")))
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NewNotFoundError("missing"))))
}
