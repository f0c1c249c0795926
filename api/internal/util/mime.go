package util

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"unicode"
)

func SniffMimeHTTP(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	return "application/octet-stream"
}

func MakeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64MaybeDataURL decodes an image sent as bare base64 or as a
// data: URI, returning the URI's MIME type when there is one. Line breaks and
// spaces inside the payload are ignored, and padding is optional.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	payload, hint := splitDataURL(strings.TrimSpace(s))
	payload = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, hint, errors.New("empty base64 payload")
	}

	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(payload)
		if err == nil {
			return b, hint, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, "", firstErr
}

// splitDataURL separates "data:<mime>[;params],<payload>". Anything else is
// returned unchanged as payload.
func splitDataURL(s string) (payload, mime string) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return s, ""
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return s, ""
	}
	mime, _, _ = strings.Cut(meta, ";")
	return data, strings.TrimSpace(mime)
}

// PickMIME prefers the explicit type, then the data: URI hint, then sniffing.
// Cookbook photos arrive as JPEG far more often than anything else, so that is
// the fallback.
func PickMIME(explicit, hint string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	if len(data) > 0 {
		if m := http.DetectContentType(data); strings.HasPrefix(m, "image/") {
			return m
		}
		if m := SniffMimeHTTP(data); m != "application/octet-stream" {
			return m
		}
	}
	return "image/jpeg"
}
