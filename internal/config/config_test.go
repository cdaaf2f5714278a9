package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/prefs"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(dir, "nested", DefaultDBName), cfg.DBPath)
	assert.Equal(t, "all", cfg.DefaultFilter)
	assert.Equal(t, 7, cfg.RecentDays)
	assert.Equal(t, 4*time.Second, cfg.UndoGrace())
	assert.Equal(t, "q", cfg.Keys.Quit)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreate_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	body := `db_path = "/var/lib/agenda/tasks.db"
default_filter = "pending"
recent_days = 14
undo_grace_seconds = 0

[theme]
dark_mode = true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/agenda/tasks.db", cfg.DBPath)
	assert.Equal(t, "pending", cfg.DefaultFilter)
	assert.Equal(t, 14, cfg.RecentDays)
	assert.Equal(t, 4, cfg.UndoGraceSeconds, "non-positive falls back")
	assert.Equal(t, prefs.Theme{DarkMode: true}, cfg.Theme.Prefs())
	assert.Equal(t, "a", cfg.Keys.Add, "missing keys keep defaults")
}

func TestLoadOrCreate_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("db_path = ["), 0o644))

	_, err := LoadOrCreate(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/override.db")
	t.Setenv(EnvLogPath, "/tmp/agenda.log")
	t.Setenv(EnvDBDebug, "true")

	cfg := defaultConfig()
	ApplyEnv(&cfg)
	assert.Equal(t, "/tmp/override.db", cfg.DBPath)
	assert.Equal(t, "/tmp/agenda.log", cfg.LogPath)
	assert.True(t, cfg.DBDebug)

	t.Setenv(EnvDBDebug, "not-a-bool")
	ApplyEnv(&cfg)
	assert.True(t, cfg.DBDebug, "unparsable value ignored")
}

func TestApplyEnv_RelativeDBPath(t *testing.T) {
	t.Setenv(EnvDBPath, filepath.Join("data", "tasks.db"))
	wd, err := os.Getwd()
	require.NoError(t, err)

	cfg, err := LoadOrCreate(filepath.Join(t.TempDir(), DefaultConfigFileName))
	require.NoError(t, err)
	ApplyEnv(&cfg)
	assert.Equal(t, filepath.Join(wd, "data", "tasks.db"), cfg.DBPath)
}

func TestResolveConfigPath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/agenda.toml")
	assert.Equal(t, "/etc/agenda.toml", ResolveConfigPath())
}

func TestThemeSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("db_path = \"tasks.db\"\nrecent_days = 3\n"), 0o644))

	saver := ThemeSaver(path)
	require.NoError(t, saver.SaveTheme(prefs.Theme{DarkMode: true, DynamicColor: true}))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, cfg.Theme.DarkMode)
	assert.True(t, cfg.Theme.DynamicColor)
	assert.Equal(t, 3, cfg.RecentDays)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "tasks.db"), cfg.DBPath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tasks.db")
	assert.NotContains(t, string(data), filepath.Dir(path), "db_path stays relative")
}

func TestHolderPersistsThroughSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	_, err := LoadOrCreate(path)
	require.NoError(t, err)

	holder := prefs.New(prefs.Theme{}, ThemeSaver(path))
	require.NoError(t, holder.SetDarkMode(true))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, cfg.Theme.DarkMode)
}
