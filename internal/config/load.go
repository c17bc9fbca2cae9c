package config

import (
	"os"
	"time"

	"github.com/eshaffer321/cmsclient-go/internal/types"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variables read by Load
const EnvPrefix = "CMS"

// Settings are the raw configuration inputs read at process start
type Settings struct {
	Mode        Mode          `yaml:"api_mode" envconfig:"API_MODE"`
	APIURL      string        `yaml:"api_url" envconfig:"API_URL"`
	Environment Environment   `yaml:"env" envconfig:"APP_ENV"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"API_TIMEOUT"`
	MaxRetries  int           `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	Session     SessionConfig `yaml:"session" envconfig:"SESSION"`
	Logging     LoggingConfig `yaml:"logging" envconfig:"LOG"`
	SentryDSN   string        `yaml:"sentry_dsn" envconfig:"SENTRY_DSN"`
}

// SessionConfig selects the durable session slot. The fields carry no
// envconfig tag: a tag would also be read unprefixed, as $STORE or $FORMAT.
type SessionConfig struct {
	Store    string `yaml:"store" split_words:"true"` // memory, file, bolt
	FilePath string `yaml:"path" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true"`  // debug, info, warn, error
	Format string `yaml:"format" split_words:"true"` // json, console
}

// Load reads defaults, then the YAML file at path (if present), then CMS_* environment variables
func Load(path string) (*Settings, error) {
	s := defaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		} else if err := yaml.Unmarshal(data, s); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := envconfig.Process(EnvPrefix, s); err != nil {
		return nil, errors.Wrap(err, "failed to process environment variables")
	}

	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return s, nil
}

func defaultSettings() *Settings {
	return &Settings{
		Mode:        ModeAuto,
		Environment: EnvDevelopment,
		Timeout:     types.DefaultTimeout,
		MaxRetries:  types.DefaultMaxRetries,
		Session: SessionConfig{
			Store: "file",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate validates the settings
func (s *Settings) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if _, err := ParseEnvironment(string(s.Environment)); err != nil {
		return err
	}
	if s.Environment == "" {
		s.Environment = EnvDevelopment
	}
	if s.Timeout <= 0 {
		return errors.Errorf("invalid timeout: %s", s.Timeout)
	}
	if s.MaxRetries < 0 {
		return errors.Errorf("invalid max retries: %d", s.MaxRetries)
	}
	switch s.Session.Store {
	case "memory", "file", "bolt":
	default:
		return errors.Errorf("invalid session store: %s (must be memory, file, or bolt)", s.Session.Store)
	}
	return nil
}
