package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"agenda/internal/prefs"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	appDirName            = "agenda"

	EnvConfigPath = "AGENDA_CONFIG"
	EnvDBPath     = "AGENDA_DB_PATH"
	EnvDBDebug    = "AGENDA_DB_DEBUG"
	EnvLogPath    = "AGENDA_LOG_PATH"
)

type Keymap struct {
	Quit         string `toml:"quit"`
	Add          string `toml:"add"`
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	Toggle       string `toml:"toggle"`
	Delete       string `toml:"delete"`
	Undo         string `toml:"undo"`
	Detail       string `toml:"detail"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Edit         string `toml:"edit"`
	Filter       string `toml:"filter"`
	PrevDay      string `toml:"prev_day"`
	NextDay      string `toml:"next_day"`
	Today        string `toml:"today"`
	PrevMonth    string `toml:"prev_month"`
	NextMonth    string `toml:"next_month"`
	NextScreen   string `toml:"next_screen"`
	PriorityUp   string `toml:"priority_up"`
	PriorityDown string `toml:"priority_down"`
	DarkMode     string `toml:"dark_mode"`
	DynamicColor string `toml:"dynamic_color"`
}

type Theme struct {
	DarkMode     bool `toml:"dark_mode"`
	DynamicColor bool `toml:"dynamic_color"`
}

type Config struct {
	DBPath           string `toml:"db_path"`
	DefaultFilter    string `toml:"default_filter"`
	RecentDays       int    `toml:"recent_days"`
	UndoGraceSeconds int    `toml:"undo_grace_seconds"`
	LogPath          string `toml:"log_path"`
	DBDebug          bool   `toml:"db_debug"`
	Theme            Theme  `toml:"theme"`
	Keys             Keymap `toml:"keys"`
}

// UndoGrace is how long a swiped-away task can still be restored.
func (c Config) UndoGrace() time.Duration {
	return time.Duration(c.UndoGraceSeconds) * time.Second
}

func (t Theme) Prefs() prefs.Theme {
	return prefs.Theme{DarkMode: t.DarkMode, DynamicColor: t.DynamicColor}
}

// ResolveConfigPath returns $AGENDA_CONFIG, or config.toml inside the user
// config directory, falling back to the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		cfg.DBPath = resolveDBPath(path, cfg.DBPath)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.RecentDays <= 0 {
		cfg.RecentDays = 7
	}
	if cfg.UndoGraceSeconds <= 0 {
		cfg.UndoGraceSeconds = 4
	}
	cfg.DBPath = resolveDBPath(path, cfg.DBPath)
	return cfg, nil
}

// ApplyEnv overrides file values with AGENDA_* environment variables.
// A relative AGENDA_DB_PATH is taken from the working directory, like any
// path given on the command line; a relative db_path in the file resolves
// next to the config file instead.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
		if !filepath.IsAbs(v) && !strings.HasPrefix(v, "file:") {
			if abs, err := filepath.Abs(v); err == nil {
				cfg.DBPath = abs
			}
		}
	}
	if v := os.Getenv(EnvLogPath); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv(EnvDBDebug); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.DBDebug = on
		}
	}
}

// ThemeSaver writes theme changes back into the config file at path.
func ThemeSaver(path string) prefs.Saver {
	return prefs.SaverFunc(func(t prefs.Theme) error {
		return SaveTheme(path, Theme{DarkMode: t.DarkMode, DynamicColor: t.DynamicColor})
	})
}

// SaveTheme rewrites only the [theme] table, keeping the rest of the file
// as stored (db_path stays relative if it was).
func SaveTheme(path string, theme Theme) error {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return err
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}
	cfg.Theme = theme
	return write(path, cfg)
}

func resolveDBPath(configPath, dbPath string) string {
	if filepath.IsAbs(dbPath) || strings.HasPrefix(dbPath, "file:") {
		return dbPath
	}
	return filepath.Join(filepath.Dir(configPath), dbPath)
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:           DefaultDBName,
		DefaultFilter:    "all",
		RecentDays:       7,
		UndoGraceSeconds: 4,
		Keys: Keymap{
			Quit:         "q",
			Add:          "a",
			Up:           "k",
			Down:         "j",
			Toggle:       " ",
			Delete:       "d",
			Undo:         "u",
			Detail:       "enter",
			Confirm:      "enter",
			Cancel:       "esc",
			Edit:         "e",
			Filter:       "f",
			PrevDay:      "h",
			NextDay:      "l",
			Today:        "t",
			PrevMonth:    "[",
			NextMonth:    "]",
			NextScreen:   "tab",
			PriorityUp:   "+",
			PriorityDown: "-",
			DarkMode:     "m",
			DynamicColor: "c",
		},
	}
}
