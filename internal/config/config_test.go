package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logreport/internal/extractor"
	"logreport/internal/format"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sample-log.txt", cfg.Input)
	assert.Equal(t, "output.txt", cfg.Output)
	assert.Equal(t, extractor.DefaultSchema(), cfg.Schema)
	assert.False(t, cfg.Strict)
	assert.Empty(t, cfg.Archive)

	style, err := cfg.DateStyle()
	require.NoError(t, err)
	assert.Equal(t, format.StyleLong, style.Name())
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
input: logs/in.txt
strict: true
date:
  style: weekday
schema:
  user_id: {offset: 12, length: 8}
archive: runs.db
`))
	require.NoError(t, err)

	assert.Equal(t, "logs/in.txt", cfg.Input)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "runs.db", cfg.Archive)
	assert.Equal(t, extractor.Span{Offset: 12, Length: 8}, cfg.Schema.UserID)
	// Untouched spans keep their defaults.
	assert.Equal(t, extractor.DefaultSchema().DateTime, cfg.Schema.DateTime)

	style, err := cfg.DateStyle()
	require.NoError(t, err)
	assert.Equal(t, format.StyleWeekday, style.Name())
}

func TestParse_Pattern(t *testing.T) {
	cfg, err := Parse([]byte("date:\n  pattern: \"%d.%m.%Y %H:%M\"\n"))
	require.NoError(t, err)

	style, err := cfg.DateStyle()
	require.NoError(t, err)
	assert.Equal(t, format.CustomStyle, style.Name())
	assert.Equal(t, "%d.%m.%Y %H:%M", style.Pattern())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "inptu: x\n"},
		{"unknown style", "date:\n  style: fancy\n"},
		{"bad span", "schema:\n  id: {offset: -1, length: 4}\n"},
		{"empty output", "output: \"\"\n"},
		{"malformed", "input: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logreport.yaml")

	cfg := DefaultConfig()
	cfg.Output = "report.txt"
	cfg.Date.Style = format.StyleWeekday
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
