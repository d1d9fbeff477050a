// internal/utils/dataurl.go
package utils

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidDataURL = errors.New("invalid data URL")

// DecodeDataURL decodes an RFC 2397 "data:" URL as sent by the admin UI for freshly
// picked files. It returns the declared MIME type (lowercased, parameters stripped)
// and the payload bytes.
func DecodeDataURL(raw string) (string, []byte, error) {
	if !strings.HasPrefix(raw, "data:") {
		return "", nil, ErrInvalidDataURL
	}

	meta, payload, found := strings.Cut(raw[len("data:"):], ",")
	if !found {
		return "", nil, ErrInvalidDataURL
	}

	isBase64 := false
	if strings.HasSuffix(meta, ";base64") {
		isBase64 = true
		meta = strings.TrimSuffix(meta, ";base64")
	}

	mimeType, _, _ := strings.Cut(meta, ";")
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		mimeType = "text/plain"
	}

	if !isBase64 {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, ErrInvalidDataURL
		}
		return mimeType, []byte(decoded), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some encoders omit padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, ErrInvalidDataURL
		}
	}

	return mimeType, data, nil
}

func IsDataURL(raw string) bool {
	return strings.HasPrefix(raw, "data:")
}
