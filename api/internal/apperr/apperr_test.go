package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(Invalid("missing %s", "text")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(Fetch(errors.New("dial tcp"))))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(Unexpected(errors.New("quota"))))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))

	wrapped := fmt.Errorf("dispatch: %w", Invalid("bad"))
	assert.Equal(t, http.StatusBadRequest, StatusOf(wrapped))
	assert.Equal(t, KindInvalidRequest, KindOf(wrapped))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Insufficient text provided for analysis.", Message(Invalid("Insufficient text provided for analysis.")))
	assert.Equal(t, "Failed to fetch or scrape URL: timeout", Message(Fetch(errors.New("timeout"))))
	assert.Equal(t, "An unexpected error occurred: boom", Message(errors.New("boom")))

	fe := Fetch(errors.New("x"))
	assert.ErrorIs(t, fe, fe.Err)
}
