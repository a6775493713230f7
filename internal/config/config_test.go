package config_test

import (
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/kmlforge/internal/config"
	"github.com/UnknownOlympus/kmlforge/internal/spreadsheet"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load([]string{"--dir", "data"})

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "data", cfg.Dir)
	assert.Equal(t, "Label", cfg.LabelColumn)
	assert.Equal(t, "Description", cfg.NoteColumn)
	assert.Equal(t, spreadsheet.FormatXLSX, cfg.TableFormat)
	assert.False(t, cfg.Combine)
	assert.False(t, cfg.ToTable)
	assert.False(t, cfg.Merge)
	assert.Empty(t, cfg.Output)
	assert.Empty(t, cfg.MetricsFile)
	assert.Empty(t, cfg.Files)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("KMLFORGE_ENV", "local")
	t.Setenv("KMLFORGE_DIR", "/srv/points")
	t.Setenv("KMLFORGE_LABEL_COLUMN", "Name")
	t.Setenv("KMLFORGE_COMBINE", "true")
	t.Setenv("KMLFORGE_TABLE_FORMAT", "CSV")

	cfg, err := config.Load(nil)

	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "/srv/points", cfg.Dir)
	assert.Equal(t, "Name", cfg.LabelColumn)
	assert.True(t, cfg.Combine)
	assert.Equal(t, spreadsheet.FormatCSV, cfg.TableFormat)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("KMLFORGE_DIR", "/from/env")
	t.Setenv("KMLFORGE_NOTE_COLUMN", "Comment")

	cfg, err := config.Load([]string{
		"--dir", "/from/flag",
		"--merge",
		"--output", "out.kml",
		"--metrics-file", "kmlforge.prom",
		"a.kml", "b.kml",
	})

	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Dir)
	assert.Equal(t, "Comment", cfg.NoteColumn)
	assert.True(t, cfg.Merge)
	assert.Equal(t, "out.kml", cfg.Output)
	assert.Equal(t, "kmlforge.prom", cfg.MetricsFile)
	assert.Equal(t, []string{"a.kml", "b.kml"}, cfg.Files)
}

func TestLoad_ConfigFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(dir, "settings.yaml")
		filet.File(t, path, "dir: /from/file\nlabel-column: Site\nto-table: true\ntable-format: csv\n")
		t.Setenv("KMLFORGE_LABEL_COLUMN", "Station")

		cfg, err := config.Load([]string{"--config", path})

		require.NoError(t, err)
		assert.Equal(t, "/from/file", cfg.Dir)
		assert.Equal(t, "Station", cfg.LabelColumn)
		assert.True(t, cfg.ToTable)
		assert.Equal(t, spreadsheet.FormatCSV, cfg.TableFormat)
	})

	t.Run("working directory file", func(t *testing.T) {
		workDir := filet.TmpDir(t, "")
		filet.File(t, filepath.Join(workDir, "kmlforge.yaml"), "dir: /from/workdir\n")
		t.Chdir(workDir)

		cfg, err := config.Load(nil)

		require.NoError(t, err)
		assert.Equal(t, "/from/workdir", cfg.Dir)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := config.Load([]string{"--config", filepath.Join(dir, "absent.yaml")})

		require.ErrorIs(t, err, config.ErrConfigFile)
	})
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "missing directory", args: nil, wantErr: config.ErrInvalid},
		{name: "empty label column", args: []string{"--dir", "d", "--label-column", " "}, wantErr: config.ErrInvalid},
		{name: "unknown table format", args: []string{"--dir", "d", "--table-format", "ods"}, wantErr: config.ErrInvalid},
		{name: "unknown flag", args: []string{"--dir", "d", "--verbose"}, wantErr: config.ErrFlags},
		{name: "help", args: []string{"--help"}, wantErr: pflag.ErrHelp},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(tc.args)

			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := config.Config{TableFormat: "ods"}

	err := cfg.Validate()

	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "dir is required")
	assert.Contains(t, err.Error(), "label-column must not be empty")
	assert.Contains(t, err.Error(), "ods")
}
