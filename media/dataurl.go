package media

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidDataURL is returned when an avatar payload is not a base64 data URL.
var ErrInvalidDataURL = errors.New("media: invalid data url")

// DecodeDataURL splits a "data:<type>;base64,<payload>" string into its
// content type and decoded bytes.
func DecodeDataURL(s string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok || contentType == "" {
		return "", nil, ErrInvalidDataURL
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return "", nil, ErrInvalidDataURL
	}
	return contentType, data, nil
}
