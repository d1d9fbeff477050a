package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	mimeType, data, err := DecodeDataURL("data:image/PNG;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, []byte("hello"), data)
}

func TestDecodeDataURLWithoutPadding(t *testing.T) {
	_, data, err := DecodeDataURL("data:image/jpeg;base64,aGVsbG8")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestDecodeDataURLPlainPayload(t *testing.T) {
	mimeType, data, err := DecodeDataURL("data:,hola%20mundo")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mimeType)
	assert.Equal(t, "hola mundo", string(data))
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "https://cdn/x.png", "data:image/png;base64", "data:image/png;base64,@@@"} {
		_, _, err := DecodeDataURL(raw)
		assert.ErrorIs(t, err, ErrInvalidDataURL, raw)
	}
}
