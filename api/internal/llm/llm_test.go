package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingModel struct {
	name  string
	out   string
	err   error
	calls int
	seen  []Part
}

func (m *countingModel) Name() string { return m.name }

func (m *countingModel) Generate(_ context.Context, parts []Part) (string, error) {
	m.calls++
	m.seen = parts
	return m.out, m.err
}

func TestSelect(t *testing.T) {
	pro := &countingModel{name: "gemini-2.5-pro"}
	flash := &countingModel{name: "gemini-2.5-flash"}
	gpt := &countingModel{name: "gpt-4o-mini"}

	ms := &Models{Pro: pro, Flash: flash}
	assert.Same(t, pro, ms.Select(""))
	assert.Same(t, pro, ms.Select("gemini-2.5-pro"))
	assert.Same(t, pro, ms.Select("something-else"))
	assert.Same(t, flash, ms.Select("gemini-2.5-flash"))
	assert.Same(t, flash, ms.Select("FLASH"))
	assert.Same(t, pro, ms.Select("gpt-4o"), "gpt without a registered model falls back to pro")

	ms.GPT = gpt
	assert.Same(t, gpt, ms.Select("gpt-4o"))
}

func TestValidate(t *testing.T) {
	assert.Error(t, (*Models)(nil).Validate())
	assert.Error(t, (&Models{Pro: &countingModel{}}).Validate())
	assert.NoError(t, (&Models{Pro: &countingModel{}, Flash: &countingModel{}}).Validate())
}

func TestInvokeDeveloperModeSkipsModel(t *testing.T) {
	m := &countingModel{name: "pro", out: "{}"}
	parts := []Part{Image{MIMEType: "image/jpeg", Data: []byte{1}}, Text("hello "), Text("world")}

	call, err := Invoke(context.Background(), m, parts, true)
	require.NoError(t, err)
	assert.Equal(t, 0, m.calls)
	assert.True(t, call.Skipped)
	assert.True(t, call.HasImage)
	assert.Equal(t, "hello world", call.PromptText)
	assert.Empty(t, call.Model)
}

func TestInvokeCallsOnce(t *testing.T) {
	m := &countingModel{name: "pro", out: "```json\n{}\n```"}
	parts := []Part{Text("p")}

	call, err := Invoke(context.Background(), m, parts, false)
	require.NoError(t, err)
	assert.Equal(t, 1, m.calls)
	assert.Equal(t, parts, m.seen)
	assert.Equal(t, "```json\n{}\n```", call.Raw)
	assert.Equal(t, "pro", call.Model)
	assert.False(t, call.HasImage)
}

func TestInvokeError(t *testing.T) {
	m := &countingModel{name: "pro", err: errors.New("quota exceeded")}
	_, err := Invoke(context.Background(), m, []Part{Text("p")}, false)
	assert.EqualError(t, err, "quota exceeded")
	assert.Equal(t, 1, m.calls)
}
