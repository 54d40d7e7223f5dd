package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryNone},
		{"local conflict", fmt.Errorf("create: %w", schedule.ErrConflict), CategoryValidation},
		{"local illegal transition", lifecycle.ErrIllegalTransition, CategoryValidation},
		{"batch in progress", ErrBatchInProgress, CategoryValidation},
		{"local forbidden", fmt.Errorf("delete: %w", ErrForbidden), CategoryValidation},
		{"server conflict", Reject(schedule.ErrConflict), CategoryRemote},
		{"server not found", fmt.Errorf("approve: %w", Reject(ErrNotFound)), CategoryRemote},
		{"transport", fmt.Errorf("%w: connection refused", ErrTransport), CategoryTransport},
		{"unknown", errors.New("boom"), CategoryTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestRejectionKeepsCause(t *testing.T) {
	err := Reject(lifecycle.ErrMissingMessage)

	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorIs(t, err, lifecycle.ErrMissingMessage)
	assert.Nil(t, Reject(nil))
}

func TestCodeRoundTrip(t *testing.T) {
	err := Reject(fmt.Errorf("slot 3: %w", schedule.ErrConflict))

	code := Code(err)

	assert.Equal(t, "conflict", code)
	assert.Equal(t, schedule.ErrConflict, FromCode(code))
	assert.Equal(t, "internal", Code(errors.New("boom")))
	assert.Nil(t, FromCode("internal"))
}
