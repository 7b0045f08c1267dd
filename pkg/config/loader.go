package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/logging"
	"github.com/arthur-debert/rendir/pkg/utils"
)

// EnvPrefix is the prefix of environment overrides, e.g. RENDIR_SCAN_DEPTH
const EnvPrefix = "RENDIR_"

// LoadOptions selects the sources beyond the embedded defaults
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist.
	// When empty the user config file is used if present.
	ConfigFile string

	// Overrides are flat "section.key" values from command line flags
	Overrides map[string]interface{}

	// SkipEnv ignores RENDIR_* variables
	SkipEnv bool
}

// userConfigPath is a variable so tests can point it elsewhere
var userConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "rendir", "config.toml")
}

// UserConfigPath returns where rendir looks for the user config file
func UserConfigPath() string {
	return userConfigPath()
}

// Load builds the effective configuration
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Config file
	path := utils.ExpandPath(opts.ConfigFile)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", path).
				WithDetail(errors.DetailPath, path)
		}
	} else if candidate := userConfigPath(); candidate != "" {
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).
				WithDetail(errors.DetailPath, path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flag overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				stringToModeHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps RENDIR_PLAN_RESOLVE_CYCLES to plan.resolve_cycles: only the
// first underscore separates the section from the key.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

func stringToModeHookFunc() mapstructure.DecodeHookFunc {
	modeType := reflect.TypeOf(Mode(0))
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != modeType || f.Kind() != reflect.String {
			return data, nil
		}
		return ParseMode(data.(string))
	}
}

func validate(cfg *Config) error {
	if cfg.Scan.Depth < 0 {
		return errors.Newf(errors.ErrConfigLoad, "scan.depth must not be negative, got %d", cfg.Scan.Depth)
	}
	if cfg.Scan.Depth == 0 {
		cfg.Scan.Depth = 1
	}
	if cfg.Apply.DirMode == 0 {
		cfg.Apply.DirMode = 0o755
	}
	cfg.Editor.TempDir = utils.ExpandPath(cfg.Editor.TempDir)
	if cfg.Plan.TempPrefix == "" {
		return errors.New(errors.ErrConfigLoad, "plan.temp_prefix must not be empty")
	}
	return nil
}
