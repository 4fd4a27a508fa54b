package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultLogLevel   = "info"
	DefaultEditAs     = "oneCell"
	DefaultConfigName = ".xlmedia.toml"
	configDirEnvKey   = "XLMEDIA_CONFIG_DIR"
	defaultPrettyJSON = true
	defaultOutputPerm = 0o644
)

// Config defines runtime configuration for the xlmedia CLI.
type Config struct {
	LogLevel      string `toml:"log_level"`
	DefaultEditAs string `toml:"default_edit_as"`
	Pretty        bool   `toml:"pretty"`
	OutputPerm    uint32 `toml:"output_perm"`
	// Path is the file the values were read from, empty when none was found.
	Path string `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		LogLevel:      DefaultLogLevel,
		DefaultEditAs: DefaultEditAs,
		Pretty:        defaultPrettyJSON,
		OutputPerm:    defaultOutputPerm,
	}
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return false, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return true, nil
}

// DefaultPath returns the config file used when no --config flag is given:
// $XLMEDIA_CONFIG_DIR/.xlmedia.toml if set, else ~/.xlmedia.toml.
func DefaultPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, DefaultConfigName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigName), nil
}

// Load reads configuration from path, or from DefaultPath when path is
// empty. A missing default file yields defaults; a missing explicit file
// is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return &cfg, nil
		}
		path = p
	}
	found, err := loadFileIfExists(path, &cfg)
	if err != nil {
		return nil, err
	}
	if !found && explicit {
		return nil, fmt.Errorf("config file %s not found", path)
	}
	if found {
		cfg.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.DefaultEditAs {
	case "oneCell", "twoCell", "absolute":
	default:
		return fmt.Errorf("invalid default_edit_as %q: must be oneCell, twoCell or absolute", c.DefaultEditAs)
	}
	if c.OutputPerm == 0 || c.OutputPerm > 0o777 {
		return fmt.Errorf("invalid output_perm %o", c.OutputPerm)
	}
	return nil
}
