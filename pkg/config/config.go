package config

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the effective configuration of a run
type Config struct {
	Editor Editor `koanf:"editor" toml:"editor"`
	Scan   Scan   `koanf:"scan" toml:"scan"`
	Plan   Plan   `koanf:"plan" toml:"plan"`
	Apply  Apply  `koanf:"apply" toml:"apply"`
}

// Editor controls how the buffer is edited
type Editor struct {
	Command     string `koanf:"command" toml:"command"`
	Fallback    string `koanf:"fallback" toml:"fallback"`
	TempDir     string `koanf:"temp_dir" toml:"temp_dir"`
	TempPattern string `koanf:"temp_pattern" toml:"temp_pattern"`
}

// Scan controls the listing
type Scan struct {
	Depth int `koanf:"depth" toml:"depth"`
}

// Plan controls reconciliation
type Plan struct {
	ResolveCycles bool   `koanf:"resolve_cycles" toml:"resolve_cycles"`
	TempPrefix    string `koanf:"temp_prefix" toml:"temp_prefix"`
}

// Apply controls how operations are executed
type Apply struct {
	DirMode Mode `koanf:"dir_mode" toml:"dir_mode"`
}

// Mode is a permission set written in octal in config files ("0755")
type Mode fs.FileMode

// Perm returns the mode as an fs.FileMode
func (m Mode) Perm() fs.FileMode {
	return fs.FileMode(m).Perm()
}

// MarshalText renders the mode in the octal form used by config files
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%04o", uint32(m.Perm()))), nil
}

// ParseMode reads an octal permission string such as "0755" or "755"
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("invalid mode %q: only permission bits are allowed", s)
	}
	return Mode(v), nil
}

// EditorCommand resolves the editor to launch: the configured command, then
// $EDITOR, then the fallback.
func (c *Config) EditorCommand(getenv func(string) string) string {
	if cmd := strings.TrimSpace(c.Editor.Command); cmd != "" {
		return cmd
	}
	if getenv != nil {
		if cmd := strings.TrimSpace(getenv("EDITOR")); cmd != "" {
			return cmd
		}
	}
	if c.Editor.Fallback != "" {
		return c.Editor.Fallback
	}
	return "vi"
}

// TOML renders the configuration as a TOML document
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}
