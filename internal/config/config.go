package config

import (
	"time"

	"github.com/lowc1012/drivetrain-limiter/internal/control"
	"github.com/lowc1012/drivetrain-limiter/internal/drive"
	"github.com/lowc1012/drivetrain-limiter/internal/ratelimiter"
)

// Config represents the complete application configuration
type Config struct {
	Drive   DriveConfig   `mapstructure:"drive"`
	Loop    LoopConfig    `mapstructure:"loop"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DriveConfig holds the per-axis acceleration limits, in command units
// per second, and the motor wiring.
type DriveConfig struct {
	MaxYAcceleration      float64          `mapstructure:"max_y_acceleration"`
	MaxXAcceleration      float64          `mapstructure:"max_x_acceleration"`
	MaxRotateAcceleration float64          `mapstructure:"max_rotate_acceleration"`
	Filter                ratelimiter.Type `mapstructure:"filter"`
	Inverted              InvertedConfig   `mapstructure:"inverted"`
}

// InvertedConfig marks motors mounted backwards.
type InvertedConfig struct {
	FrontLeft  bool `mapstructure:"front_left"`
	FrontRight bool `mapstructure:"front_right"`
	RearLeft   bool `mapstructure:"rear_left"`
	RearRight  bool `mapstructure:"rear_right"`
}

// LoopConfig contains control loop configuration
type LoopConfig struct {
	Period       time.Duration `mapstructure:"period"`
	FieldCentric bool          `mapstructure:"field_centric"`
	RateLimited  bool          `mapstructure:"rate_limited"`
}

// RedisConfig contains telemetry store configuration
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// DriveSettings converts the drive section for drive.NewSubsystem.
func (c *Config) DriveSettings() drive.Config {
	return drive.Config{
		MaxYAcceleration:      c.Drive.MaxYAcceleration,
		MaxXAcceleration:      c.Drive.MaxXAcceleration,
		MaxRotateAcceleration: c.Drive.MaxRotateAcceleration,
		Filter:                c.Drive.Filter,
		Inverted: drive.Inversion{
			FrontLeft:  c.Drive.Inverted.FrontLeft,
			FrontRight: c.Drive.Inverted.FrontRight,
			RearLeft:   c.Drive.Inverted.RearLeft,
			RearRight:  c.Drive.Inverted.RearRight,
		},
	}
}

// LoopSettings converts the loop section for control.NewLoop.
func (c *Config) LoopSettings() control.Config {
	return control.Config{
		Period:       c.Loop.Period,
		FieldCentric: c.Loop.FieldCentric,
		RateLimited:  c.Loop.RateLimited,
	}
}
