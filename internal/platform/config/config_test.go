package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrefixAndKey(t *testing.T) {
	sc := New().Prefix("CORE_").Prefix("SENTINEL_")
	assert.Equal(t, "CORE_SENTINEL_REGULATORS", sc.key("REGULATORS"))
}

func TestMustString(t *testing.T) {
	c := New().Prefix("SERVICE_PGSQL_")
	t.Setenv("SERVICE_PGSQL_DBURL", "  postgres://localhost/sentinel ")
	assert.Equal(t, "postgres://localhost/sentinel", c.MustString("DBURL"))
	assert.Panics(t, func() { c.MustString("MISSING") })
}

func TestMayValues(t *testing.T) {
	c := New().Prefix("CORE_SENTINEL_")
	t.Setenv("CORE_SENTINEL_REGULATORY_THRESHOLD", "0.7")
	t.Setenv("CORE_SENTINEL_DEFAULT_LIMIT", "ten")
	t.Setenv("CORE_SENTINEL_RUN_LOG", "false")
	t.Setenv("CORE_SENTINEL_TIMEOUT", "90s")
	t.Setenv("CORE_SENTINEL_NAME", "   ")

	assert.Equal(t, 0.7, c.MayFloat64("REGULATORY_THRESHOLD", 0.65))
	assert.Equal(t, 25, c.MayInt("DEFAULT_LIMIT", 25), "invalid falls back")
	assert.False(t, c.MayBool("RUN_LOG", true))
	assert.Equal(t, 90*time.Second, c.MayDuration("TIMEOUT", time.Minute))
	assert.Equal(t, "sentinel", c.MayString("NAME", "sentinel"), "blank is unset")
	assert.Equal(t, 3, c.MayInt("UNSET", 3))
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CORE_SENTINEL_")
	t.Setenv("CORE_SENTINEL_REGULATORS", " MAS, ,FCA,")
	assert.Equal(t, []string{"MAS", "FCA"}, c.MayCSV("REGULATORS", nil))

	t.Setenv("CORE_SENTINEL_REGULATORS", " , ")
	assert.Equal(t, []string{"ALL"}, c.MayCSV("REGULATORS", []string{"ALL"}))
}
