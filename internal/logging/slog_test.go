package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeEntity(t *testing.T) {
	hashed := AnonymizeEntity("user@example.com")
	assert.True(t, strings.HasPrefix(hashed, "entity:"))
	assert.NotContains(t, hashed, "user@example.com")

	// Stable for correlation
	assert.Equal(t, hashed, AnonymizeEntity("user@example.com"))
	assert.NotEqual(t, hashed, AnonymizeEntity("other@example.com"))

	assert.Equal(t, "", AnonymizeEntity(""))
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))
	assert.Equal(t, "[token:6 chars]", SanitizeToken("secret"))
	assert.NotContains(t, SanitizeToken("super-secret-token"), "super")
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	// nil error yields an empty group that slog omits
	empty := Err(nil)
	assert.Equal(t, "", empty.Key)
}
