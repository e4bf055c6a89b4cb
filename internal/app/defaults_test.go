package app

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("PROWRITER_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("PROWRITER_HOME", "/custom/pw")
		t.Setenv("LANG", "de_DE.UTF-8")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if d.ConfigPath != "/custom/config.toml" {
			t.Errorf("ConfigPath = %q, want %q", d.ConfigPath, "/custom/config.toml")
		}
		if d.BaseDir != "/custom/pw" {
			t.Errorf("BaseDir = %q, want %q", d.BaseDir, "/custom/pw")
		}
		if d.LogDir != "/custom/pw/log" {
			t.Errorf("LogDir = %q, want %q", d.LogDir, "/custom/pw/log")
		}
		if d.Locale != "de_DE.UTF-8" {
			t.Errorf("Locale = %q", d.Locale)
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("PROWRITER_CONFIG_PATH", "")
		t.Setenv("PROWRITER_HOME", "")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "prowriter.toml")
		if d.ConfigPath != wantConfig {
			t.Errorf("ConfigPath = %q, want %q", d.ConfigPath, wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "prowriter")
		if d.BaseDir != wantBase {
			t.Errorf("BaseDir = %q, want %q", d.BaseDir, wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if d.LogDir != wantLog {
			t.Errorf("LogDir = %q, want %q", d.LogDir, wantLog)
		}
	})
}

func TestDefaults_Language(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"", language.English},
		{"C", language.English},
		{"POSIX", language.English},
		{"de_DE.UTF-8", language.MustParse("de-DE")},
		{"fr-FR", language.MustParse("fr-FR")},
		{"sr_RS@latin", language.MustParse("sr-RS")},
		{"!!", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			d := &Defaults{Locale: tt.locale}
			if got := d.Language(); got != tt.want {
				t.Errorf("Language() = %v, want %v", got, tt.want)
			}
		})
	}
}
