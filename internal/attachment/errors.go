package attachment

import (
	"errors"
	"fmt"
)

// DecoderUnavailable reports that the decoder for a format exists but
// cannot run, typically because its external tool is not installed.
// Distinct from DecodeFailed so a caller can tell "install a tool"
// from "this file is corrupt".
type DecoderUnavailable struct {
	Format string
	Tool   string
}

func (e *DecoderUnavailable) Error() string {
	return fmt.Sprintf("no decoder available for %s: %s not found on PATH", e.Format, e.Tool)
}

// IsDecoderUnavailable reports whether err is a *DecoderUnavailable.
func IsDecoderUnavailable(err error) bool {
	var decoderUnavailable *DecoderUnavailable
	return errors.As(err, &decoderUnavailable)
}

// DecodeFailed reports that a decoder ran but could not produce text
// from the input.
type DecodeFailed struct {
	Format string
	Err    error
}

func (e *DecodeFailed) Error() string {
	return fmt.Sprintf("decoding %s content: %v", e.Format, e.Err)
}

func (e *DecodeFailed) Unwrap() error {
	return e.Err
}

// IsDecodeFailed reports whether err is a *DecodeFailed.
func IsDecodeFailed(err error) bool {
	var decodeFailed *DecodeFailed
	return errors.As(err, &decodeFailed)
}
