package attachment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message/charset"
)

// textDecoder returns plain text, converting to UTF-8 when the
// declared content type carries a non-UTF-8 charset parameter.
type textDecoder struct {
	declaredType string
}

func (textDecoder) Format() string { return "text" }

func (d textDecoder) Decode(_ context.Context, data []byte) (string, error) {
	name := d.charsetName()
	if name == "" || name == "utf-8" || name == "us-ascii" {
		if !utf8.Valid(data) {
			return "", &DecodeFailed{Format: "text", Err: fmt.Errorf("content is not valid UTF-8")}
		}
		return string(data), nil
	}

	reader, err := charset.Reader(name, bytes.NewReader(data))
	if err != nil {
		return "", &DecodeFailed{Format: "text", Err: fmt.Errorf("charset %s: %w", name, err)}
	}
	converted, err := io.ReadAll(reader)
	if err != nil {
		return "", &DecodeFailed{Format: "text", Err: fmt.Errorf("converting from %s: %w", name, err)}
	}
	return string(converted), nil
}

func (d textDecoder) charsetName() string {
	if d.declaredType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(d.declaredType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}
