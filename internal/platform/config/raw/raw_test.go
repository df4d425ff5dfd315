package raw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTrimsAndFallsBack(t *testing.T) {
	t.Setenv("SENTINEL_NAME", "  monitor  ")
	t.Setenv("SENTINEL_BLANK", "   ")

	c := New().Prefix("SENTINEL_")
	assert.Equal(t, "monitor", c.Get("NAME", "x"))
	assert.Equal(t, "x", c.Get("BLANK", "x"))
	assert.Equal(t, "x", c.Get("MISSING", "x"))
}

func TestGetBool(t *testing.T) {
	for v, want := range map[string]bool{
		"true": true, "1": true, "YES": true, "on": true,
		"false": false, "0": false, "no": false, "Off": false,
	} {
		t.Setenv("FLAG_V", v)
		assert.Equal(t, want, New().Prefix("FLAG_").GetBool("V", !want), v)
	}

	t.Setenv("FLAG_V", "maybe")
	assert.True(t, New().Prefix("FLAG_").GetBool("V", true))
	assert.False(t, New().Prefix("FLAG_").GetBool("UNSET", false))
}

func TestGetInt(t *testing.T) {
	t.Setenv("N_OK", " 42 ")
	t.Setenv("N_BAD", "12x")
	t.Setenv("N_NEG", "-5")

	c := New().Prefix("N_")
	assert.Equal(t, 42, c.GetInt("OK", 0))
	assert.Equal(t, 9, c.GetInt("BAD", 9))
	assert.Equal(t, 3, c.GetInt("NEG", 3))
	assert.Equal(t, 11, c.GetInt("UNSET", 11))
}

func TestNestedPrefixes(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("API_LOG_LEVEL", "warn")

	api := New().Prefix("API_")
	assert.Equal(t, "info", New().Prefix("LOG_").Get("LEVEL", ""))
	assert.Equal(t, "warn", api.Prefix("LOG_").Get("LEVEL", ""))
	assert.Empty(t, api.Get("LEVEL", ""))
}
