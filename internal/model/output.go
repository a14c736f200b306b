package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output is the fixed result envelope every command prints: either a
// success carrying data or a message, or a failure carrying an error
// string. A command emits exactly one envelope per invocation.
type Output struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SuccessOutput wraps a data payload in a success envelope.
func SuccessOutput(data any) Output {
	return Output{Success: true, Data: data}
}

// SuccessMessage wraps a human-readable message in a success envelope.
func SuccessMessage(format string, args ...any) Output {
	return Output{Success: true, Message: fmt.Sprintf(format, args...)}
}

// ErrorOutput wraps an error in a failure envelope.
func ErrorOutput(err error) Output {
	return Output{Success: false, Error: err.Error()}
}

// Print writes the envelope as indented JSON to w.
func (o Output) Print(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}
