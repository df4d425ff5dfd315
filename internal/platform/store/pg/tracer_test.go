package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sentinel/internal/platform/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompact(t *testing.T) {
	assert.Equal(t, "SELECT * FROM alerts WHERE id = $1", compact("SELECT *\n\tFROM alerts\r\n WHERE  id = $1 "))
	assert.Equal(t, "", compact(" \n "))
}

func TestTracerLevels(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	ctx := logger.WithRun(context.Background(), "run-3")
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 1", ElapsedUS: 1500})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT\n2", Slow: true, Err: errors.New("timeout")})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "pg", first["component"])
	assert.Equal(t, "run-3", first["run_id"])
	assert.InDelta(t, 1.5, first["elapsed_ms"], 1e-9)

	assert.Equal(t, "warn", second["level"])
	assert.Equal(t, "SELECT 2", second["sql"])
	assert.Equal(t, "timeout", second["error"])
}
