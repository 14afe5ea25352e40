package apperrors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
)

func TestNewPersistenceError_MatchesPersistenceSentinel(t *testing.T) {
	cause := errors.New("broken pipe")
	err := apperrors.NewPersistenceError("failed to insert lines", cause)

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, apperrors.ErrTimeout)
	assert.Contains(t, err.Error(), "failed to insert lines")
}

func TestNewPersistenceError_DeadlineBecomesTimeout(t *testing.T) {
	cause := fmt.Errorf("query aborted: %w", context.DeadlineExceeded)
	err := apperrors.NewPersistenceError("failed to query entries", cause)

	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, apperrors.ErrPersistence)
}

func TestNewPersistenceError_CancellationBecomesTimeout(t *testing.T) {
	err := apperrors.NewPersistenceError("failed to lock accounts", context.Canceled)

	assert.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestSentinelConstructors(t *testing.T) {
	assert.ErrorIs(t, apperrors.NewNotFoundError("gone"), apperrors.ErrNotFound)
	assert.ErrorIs(t, apperrors.NewConflictError("busy"), apperrors.ErrConflict)
	assert.ErrorIs(t, apperrors.NewValidationFailedError("bad"), apperrors.ErrValidation)
}
