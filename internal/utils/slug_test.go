package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Tractor Rojo", "tractor-rojo"},
		{"accents", "Grúa Telescópica Año 2020", "grua-telescopica-ano-2020"},
		{"punctuation dropped", "Excavadora CAT 320D (usada)!", "excavadora-cat-320d-usada"},
		{"hyphen runs", "  --Retro -- excavadora--  ", "retro-excavadora"},
		{"tabs and newlines", "bull\tdozer\nd6", "bull-dozer-d6"},
		{"already slug", "tractor-rojo-1", "tractor-rojo-1"},
		{"diacritics only", "\u0301\u0300\u0303", ""},
		{"symbols only", "¡¿!?", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GenerateSlug(tc.in))
		})
	}
}

func TestGenerateSlugIsIdempotent(t *testing.T) {
	inputs := []string{"Motoniveladora 140K", "Cargador frontal - Ñandú", "  x  ", "a--b"}
	for _, in := range inputs {
		once := GenerateSlug(in)
		assert.Equal(t, once, GenerateSlug(once), "input %q", in)
	}
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("tractor-rojo"))
	assert.False(t, IsSlug("Tractor Rojo"))
	assert.False(t, IsSlug(""))
	assert.False(t, IsSlug("-lead"))
}
