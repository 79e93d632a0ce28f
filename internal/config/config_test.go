package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/sortkey"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "novarow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "novarow", cfg.AppName)
	require.Equal(t, `\N`, cfg.Text.NullToken)
	require.Equal(t, 30*time.Second, cfg.Fetch.Timeout)

	d, err := cfg.Delimiter()
	require.NoError(t, err)
	require.Equal(t, ',', d)

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, lvl)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
app_name: rows
log_level: debug
aliases:
  main: /tmp/main
text:
  delimiter: "|"
  null_token: NULL
sort_key:
  field_delimiters: ";"
  direction_delimiters: ":"
  ascending: [up]
  descending: [DOWN]
fetch:
  timeout: 5s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "rows", cfg.AppName)
	require.Equal(t, map[string]string{"main": "/tmp/main"}, cfg.Aliases)
	require.Equal(t, "NULL", cfg.Text.NullToken)
	require.Equal(t, 5*time.Second, cfg.Fetch.Timeout)

	d, err := cfg.Delimiter()
	require.NoError(t, err)
	require.Equal(t, '|', d)

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)

	t.Run("sort factory extends the default", func(t *testing.T) {
		f := cfg.SortFactory()
		schema := record.MustSchema(
			record.Column{Name: "a", Affinity: cell.Int},
			record.Column{Name: "b", Affinity: cell.Int},
		)
		key, err := f.Render(schema, "a:down;b up")
		require.NoError(t, err)
		require.True(t, key.Equal(sortkey.NewKey(
			sortkey.Part{Column: 0, Direction: sortkey.Descending},
			sortkey.Part{Column: 1, Direction: sortkey.Ascending},
		)))

		key, err = f.Render(schema, "a desc,b")
		require.NoError(t, err)
		require.Equal(t, sortkey.Descending, key.At(0).Direction)
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "text:\n  delimiter: \"||\"\n"))
	require.ErrorContains(t, err, "text.delimiter")

	_, err = LoadConfig(writeConfig(t, "log_level: loud\n"))
	require.ErrorContains(t, err, "log_level")
}
