package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/dori/todotxt/render"
)

// Config holds application configuration.
type Config struct {
	DataDir string       `toml:"data_dir"`
	DBPath  string       `toml:"db_path"`
	Debug   bool         `toml:"debug"`
	HTML    *render.HTML `toml:"html"`
}

// defaultDataDir resolves where the database and config live when nothing
// says otherwise: TODOTXT_DATA_DIR, then ~/.local/share/todotxt, then a
// relative fallback for homeless environments.
func defaultDataDir() string {
	if dir := os.Getenv("TODOTXT_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".todotxt"
	}
	return filepath.Join(home, ".local", "share", "todotxt")
}

// DefaultConfigPath returns where LoadConfig looks when no --config flag or
// TODOTXT_CONFIG variable names a file.
func DefaultConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

// DefaultConfig returns the default application configuration. The
// TODOTXT_DATA_DIR and TODOTXT_DEBUG environment variables override the
// built-in defaults.
func DefaultConfig() *Config {
	dataDir := defaultDataDir()

	debug := false
	if v := os.Getenv("TODOTXT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			debug = b
		}
	}

	return &Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "todotxt.db"),
		Debug:   debug,
		HTML:    render.NewHTML(),
	}
}

// LoadConfig reads a TOML config file over the defaults. A missing file is
// not an error; the defaults stand.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// A config that moves the data dir moves the database with it unless it
	// pins db_path itself.
	if md.IsDefined("data_dir") && !md.IsDefined("db_path") {
		cfg.DBPath = filepath.Join(cfg.DataDir, "todotxt.db")
	}
	return cfg, nil
}
