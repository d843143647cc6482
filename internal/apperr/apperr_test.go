package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create post: %w", Upstream("media upload failed", errors.New("timeout")))

	assert.Equal(t, KindUpstream, KindOf(err))
	assert.True(t, Is(err, KindUpstream))
	assert.Contains(t, err.Error(), "timeout")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestFieldBuildsValidation(t *testing.T) {
	err := Field("content", "Ensure this field has no more than 200 characters.")

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, map[string]string{"content": "Ensure this field has no more than 200 characters."}, err.Fields)
}
