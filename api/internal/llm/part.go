package llm

import "strings"

// Part is one unit of model input: Text or Image.
type Part interface {
	isPart()
}

type Text string

// Image is an opaque binary payload sent inline with the prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

func (Text) isPart()  {}
func (Image) isPart() {}

// PromptText joins the text parts in order. Images are skipped.
func PromptText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if t, ok := p.(Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func HasImage(parts []Part) bool {
	for _, p := range parts {
		if _, ok := p.(Image); ok {
			return true
		}
	}
	return false
}
