package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/cardpress/cardpress/pkg/errors"
)

// fileConfig is the on-disk configuration profile. All fields are
// optional; explicit command-line flags always win over the file.
type fileConfig struct {
	Generate generateConfig `toml:"generate"`
}

// generateConfig carries per-deck defaults for the generate command.
// Pointer fields distinguish "not set" from an explicit zero.
type generateConfig struct {
	Output      string   `toml:"output"`
	Icon        string   `toml:"icon"`
	FrontBG     string   `toml:"front_bg"`
	BackBG      string   `toml:"back_bg"`
	QRPaddingPx *int     `toml:"qr_padding_px"`
	ShrinkFront *float64 `toml:"shrink_front"`
	ShrinkBack  *float64 `toml:"shrink_back"`
	NoMirror    *bool    `toml:"no_mirror_backside"`
	CacheDir    string   `toml:"cache_dir"`
}

// defaultConfigPath returns the standard profile location,
// ~/.config/cardpress/config.toml (or the platform equivalent).
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cardpress", "config.toml")
}

// loadConfig reads a TOML profile. With an empty path the default
// location is tried; a missing default file is not an error, a missing
// explicit file is.
func loadConfig(path string) (fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return fileConfig{}, nil
		}
	}

	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return fileConfig{}, nil
		}
		return fileConfig{}, errors.Wrap(errors.ErrCodeInvalidConfig, err,
			"read config %s", path)
	}
	return cfg, nil
}
