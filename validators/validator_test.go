package validators

import (
	"strings"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(models.CreateCommentRequest{Content: strings.Repeat("x", 201)})
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, "Ensure this field has no more than 200 characters.", ae.Fields["content"])
}

func TestStructCountsRunesNotBytes(t *testing.T) {
	assert.NoError(t, Struct(models.CreatePostRequest{Content: strings.Repeat("é", 280)}))
}

func TestPointerFieldsAreOptional(t *testing.T) {
	assert.NoError(t, Struct(models.UpdateProfileRequest{}))

	bio := strings.Repeat("b", 161)
	err := Struct(models.UpdateProfileRequest{Bio: &bio})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestEchoAdapter(t *testing.T) {
	err := NewValidator().Validate(&models.LoginRequest{})
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "username_or_email")
	assert.Contains(t, ae.Fields, "password")
}

func TestCategoryOneOf(t *testing.T) {
	err := Struct(models.CreatePostRequest{Content: "hi", Category: "rant"})
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Must be one of: general, announcement, question.", ae.Fields["category"])
}
