package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slugHolder struct {
	Title string `validate:"required,max=10"`
	Slug  string `validate:"slug"`
	Kind  string `validate:"omitempty,asset_kind"`
}

func TestValidateStructCustomTags(t *testing.T) {
	assert.NoError(t, ValidateStruct(slugHolder{Title: "Tractor", Slug: "tractor-rojo"}))
	assert.NoError(t, ValidateStruct(slugHolder{Title: "Tractor", Kind: "pdf"}))

	err := ValidateStruct(slugHolder{Title: "Tractor", Slug: "Tractor Rojo", Kind: "audio"})
	require.Error(t, err)

	fields := map[string]string{}
	for _, ve := range GetValidationErrors(err) {
		fields[ve.Field] = ve.Tag
	}
	assert.Equal(t, map[string]string{"slug": "slug", "kind": "asset_kind"}, fields)
}

func TestGetValidationErrorsMessages(t *testing.T) {
	err := ValidateStruct(slugHolder{Title: "Excavadora hidraulica"})
	errs := GetValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)
	assert.Equal(t, "Title must be at most 10", errs[0].Message)
}
