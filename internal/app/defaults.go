package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// Defaults holds the paths and locale prowriter falls back to when a config
// file does not say otherwise.
type Defaults struct {
	ConfigPath string `env:"PROWRITER_CONFIG_PATH"`
	BaseDir    string `env:"PROWRITER_HOME"`
	LogDir     string
	Locale     string `env:"LANG"`
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - PROWRITER_CONFIG_PATH: config file location (default: ~/.config/prowriter.toml)
//   - PROWRITER_HOME: base directory for prowriter data (default: ~/.local/share/prowriter)
//   - LANG: locale used for number formatting in reports
func GetDefaults() (*Defaults, error) {
	var d Defaults
	if err := env.Parse(&d); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if d.ConfigPath == "" || d.BaseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if d.ConfigPath == "" {
			d.ConfigPath = filepath.Join(homeDir, ".config", "prowriter.toml")
		}
		if d.BaseDir == "" {
			d.BaseDir = filepath.Join(homeDir, ".local", "share", "prowriter")
		}
	}
	d.LogDir = filepath.Join(d.BaseDir, "log")
	return &d, nil
}

// Language parses Locale ("en_US.UTF-8", "de-DE") into a language tag.
// Unparseable or POSIX locales give English.
func (d *Defaults) Language() language.Tag {
	locale, _, _ := strings.Cut(d.Locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return language.English
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.English
	}
	return tag
}
