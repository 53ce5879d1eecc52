package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Options{Level: "info", JSON: true})
	require.NoError(t, err)

	log.Debug("hidden", FieldPage, "a.html")
	log.Info("parsed", FieldPage, "b.html", FieldStatus, "processed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug 级别应被过滤，实际输出：%s", buf.String())

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "parsed", rec["msg"])
	assert.Equal(t, "b.html", rec[FieldPage])
	assert.Equal(t, "processed", rec[FieldStatus])
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Options{Level: "debug"})
	require.NoError(t, err)

	log.Debug("field dropped", FieldField, "rating")
	assert.Contains(t, buf.String(), "field dropped")
	assert.Contains(t, buf.String(), "rating")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "verbose"})
	assert.Error(t, err)
	assert.False(t, ValidLevel("verbose"))
	assert.True(t, ValidLevel(""))
	assert.True(t, ValidLevel("WARN"))
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error("ignored")
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
}
