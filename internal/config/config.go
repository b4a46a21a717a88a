package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/hamed0406/staffup/internal/domain"
)

// DefaultPath is used when STAFFUP_CONFIG is not set.
const DefaultPath = "config.json"

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic" validate:"required_with=Brokers"`
}

type Config struct {
	Token      string             `mapstructure:"token" validate:"required"`
	ChannelRaw string             `mapstructure:"channel" validate:"required"`
	Channel    uint64             `mapstructure:"-"`
	Alerts     []domain.AlertRule `mapstructure:"alerts" validate:"min=1,dive"`

	LogDir          string                `mapstructure:"logDir"`     // logs directory
	StatusAddr      string                `mapstructure:"statusAddr"` // status API bind address; empty disables it
	StatusKeys      []string              `mapstructure:"statusKeys"` // API keys for the status API; empty allows all
	Airports        map[string][2]float64 `mapstructure:"airports"`   // extra airport coordinates
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	CooldownMinutes int                   `mapstructure:"cooldownMinutes" validate:"gte=0"`
}

// Cooldown returns the configured cooldown, or zero to use the default.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// ConfigError is any problem with the configuration file. It is fatal at startup.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Path returns the config file location: STAFFUP_CONFIG or DefaultPath.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("STAFFUP_CONFIG")); p != "" {
		return p
	}
	return DefaultPath
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their config-file names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

// Load reads, validates and normalizes the JSON config at path.
// STAFFUP_TOKEN and STAFFUP_CHANNEL override the file.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Path: path, Err: errors.New("missing file")}
		}
		return nil, &ConfigError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &ConfigError{Path: path, Err: errors.New("not a file")}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("STAFFUP")
	_ = v.BindEnv("token")
	_ = v.BindEnv("channel")
	v.SetDefault("logDir", "logs")

	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("read: %w", err)}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.ChannelRaw = strings.TrimSpace(cfg.ChannelRaw)

	if err := check(&cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return &cfg, nil
}

func check(cfg *Config) error {
	var errs error
	if err := validate.Struct(cfg); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return err
		}
		for _, fe := range ves {
			errs = multierr.Append(errs, fieldError(fe))
		}
	}
	if cfg.ChannelRaw != "" {
		id, err := strconv.ParseUint(cfg.ChannelRaw, 10, 64)
		switch {
		case err != nil:
			errs = multierr.Append(errs, fmt.Errorf("channel: %q is not a numeric id", cfg.ChannelRaw))
		case id == 0:
			errs = multierr.Append(errs, errors.New("channel: must be non-zero"))
		default:
			cfg.Channel = id
		}
	}
	return errs
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s: required", field)
	case "min":
		return fmt.Errorf("%s: need at least %s entries", field, fe.Param())
	case "gte":
		return fmt.Errorf("%s: must be >= %s", field, fe.Param())
	case "regexp":
		return fmt.Errorf("%s: invalid pattern %q", field, fe.Value())
	default:
		return fmt.Errorf("%s: failed %s", field, fe.Tag())
	}
}
