// Package config loads the picview configuration from defaults, an
// optional yaml file, a .env file, PICVIEW_* environment variables and
// command line overrides, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AppName   = "picview"
	EnvPrefix = "PICVIEW"
)

// ErrMissingURL is returned by Validate when no API URL is configured
var ErrMissingURL = errors.New("picture API URL is not configured (set api.url or PICVIEW_API_URL)")

type APIConfig struct {
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"required|min:1"`
	Proxy     string        `mapstructure:"proxy"`
	UserAgent string        `mapstructure:"userAgent" validate:"required"`
}

// PollConfig drives the refresh of the displayed month
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"required|min:1"`
	Window   time.Duration `mapstructure:"window" validate:"required|min:1"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required|in:debug,info,warn,error"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Language  string `mapstructure:"language" validate:"required|in:fr,en"`
	PathWidth int    `mapstructure:"pathWidth" validate:"required|min:4"`
}

type SyncConfig struct {
	Cron    string        `mapstructure:"cron" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config is the full picview configuration
type Config struct {
	API   APIConfig   `mapstructure:"api"`
	Poll  PollConfig  `mapstructure:"poll"`
	Cache CacheConfig `mapstructure:"cache"`
	Log   LogConfig   `mapstructure:"log"`
	UI    UIConfig    `mapstructure:"ui"`
	Sync  SyncConfig  `mapstructure:"sync"`

	// Path is the config file that was read, empty when none
	Path string `mapstructure:"-"`
}

// Options tells Load where to look
type Options struct {
	// ConfigFile is an explicit yaml file; it must exist when set
	ConfigFile string
	// EnvFile is loaded into the environment when present. Defaults to .env
	EnvFile string
	// Overrides are applied last, typically from command line flags
	Overrides map[string]any
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.proxy", "")
	v.SetDefault("api.userAgent", "picview/1.0")
	v.SetDefault("poll.interval", 10*time.Second)
	v.SetDefault("poll.window", 30*time.Second)
	v.SetDefault("poll.timeout", 0)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", defaultCachePath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("ui.language", "fr")
	v.SetDefault("ui.pathWidth", 30)
	v.SetDefault("sync.cron", "@every 5m")
	v.SetDefault("sync.timeout", 10*time.Minute)
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return AppName + ".db"
	}
	return filepath.Join(dir, AppName, AppName+".db")
}

// Load reads and validates the configuration. When the only problem is a
// missing API URL, the loaded config is returned along with ErrMissingURL
// so that interactive callers can ask for it.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	conf.Path = v.ConfigFileUsed()

	if conf.Log.File == "" {
		conf.Log.File = filepath.Join(filepath.Dir(conf.Cache.Path), AppName+".log")
	}
	if conf.Poll.Timeout <= 0 {
		conf.Poll.Timeout = conf.Poll.Interval
	}
	conf.UI.Language = strings.ToLower(conf.UI.Language)
	conf.Log.Level = strings.ToLower(conf.Log.Level)

	if err := conf.Validate(); err != nil {
		return &conf, err
	}
	return &conf, nil
}

// Validate checks the configuration. A missing API URL yields ErrMissingURL.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.URL) == "" {
		return ErrMissingURL
	}
	if err := ValidateURL(c.API.URL); err != nil {
		return err
	}

	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid configuration: %w", v.Errors)
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("invalid configuration: cache.path is required when the cache is enabled")
	}
	return nil
}

// ValidateURL checks that raw is an absolute http(s) URL
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: expected http(s)://host[:port]", raw)
	}
	return nil
}
