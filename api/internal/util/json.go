package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseError reports model output that could not be decoded after fence
// stripping. Raw holds the text exactly as the model returned it.
type ParseError struct {
	Cause error
	Raw   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Failed to parse AI response as JSON: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

var errTrailingData = errors.New("unexpected data after top-level JSON value")

// NormalizeJSON strips fences from raw model output and decodes the rest as a
// single JSON value of any shape. Numbers are kept as json.Number so integer
// IDs round-trip unchanged.
func NormalizeJSON(raw string) (any, error) {
	cleaned := StripCodeFences(raw)
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response")
		}
		return nil, &ParseError{Cause: err, Raw: raw}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Cause: errTrailingData, Raw: raw}
	}
	return v, nil
}

// TruncateBytes is used when logging upstream bodies.
func TruncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
