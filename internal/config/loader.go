// Package config loads drivetrain configuration from defaults, an optional
// YAML file and DRIVETRAIN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/lowc1012/drivetrain-limiter/internal/ratelimiter"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// DRIVETRAIN_DRIVE_MAX_Y_ACCELERATION.
const EnvPrefix = "DRIVETRAIN"

// SetDefaults registers every known key so that environment overrides
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("drive.max_y_acceleration", 2.0)
	v.SetDefault("drive.max_x_acceleration", 2.0)
	v.SetDefault("drive.max_rotate_acceleration", 3.0)
	v.SetDefault("drive.filter", ratelimiter.AccelerationLimiterType.String())
	v.SetDefault("drive.inverted.front_left", false)
	v.SetDefault("drive.inverted.front_right", true)
	v.SetDefault("drive.inverted.rear_left", false)
	v.SetDefault("drive.inverted.rear_right", true)

	v.SetDefault("loop.period", "20ms")
	v.SetDefault("loop.field_centric", true)
	v.SetDefault("loop.rate_limited", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key_prefix", "drivetrain:")

	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("logging.level", "info")
}

// New returns a viper instance with defaults and environment binding.
// When file is not empty it is read as the config file.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringToFilterTypeHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the drive cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Drive.Filter != ratelimiter.PassthroughType {
		limits := []struct {
			key   string
			value float64
		}{
			{"drive.max_y_acceleration", c.Drive.MaxYAcceleration},
			{"drive.max_x_acceleration", c.Drive.MaxXAcceleration},
			{"drive.max_rotate_acceleration", c.Drive.MaxRotateAcceleration},
		}
		for _, l := range limits {
			if !(l.value > 0) {
				errs = append(errs, fmt.Errorf("%s must be positive, got %v", l.key, l.value))
			}
		}
	}
	if c.Loop.Period <= 0 {
		errs = append(errs, fmt.Errorf("loop.period must be positive, got %v", c.Loop.Period))
	}
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func stringToFilterTypeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(ratelimiter.Type(0)) {
			return data, nil
		}
		return ratelimiter.ParseType(reflect.ValueOf(data).String())
	}
}
