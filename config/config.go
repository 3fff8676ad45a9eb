package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CONFILE is the default configuration file name.
const CONFILE = "config.yml"

// EngineConfig selects and parameterizes the playback engine.
type EngineConfig struct {
	// Type is one of "gpio", "audio", "sim", "noop".
	Type  string      `yaml:"Type" json:"Type"`
	GPIO  GPIOConfig  `yaml:"GPIO" json:"GPIO"`
	Audio AudioConfig `yaml:"Audio" json:"Audio"`
}

// GPIOConfig describes the PWM pin driving the vibration motor.
type GPIOConfig struct {
	Pin               int           `yaml:"Pin" json:"Pin"`
	CycleLength       int           `yaml:"CycleLength" json:"CycleLength"`
	BaseFreqHz        int           `yaml:"BaseFreqHz" json:"BaseFreqHz"`
	MaxFreqHz         int           `yaml:"MaxFreqHz" json:"MaxFreqHz"`
	TransientDuration time.Duration `yaml:"TransientDuration" json:"TransientDuration"`
}

// AudioConfig describes the audible-tick renderer used on hosts without a
// haptic actuator.
type AudioConfig struct {
	SampleRate        int           `yaml:"SampleRate" json:"SampleRate"`
	BaseFreqHz        float64       `yaml:"BaseFreqHz" json:"BaseFreqHz"`
	MaxFreqHz         float64       `yaml:"MaxFreqHz" json:"MaxFreqHz"`
	TransientDuration time.Duration `yaml:"TransientDuration" json:"TransientDuration"`
}

// FeedbackConfig holds tunables applied to every played pattern.
type FeedbackConfig struct {
	// Gain scales every pulse intensity before it reaches the engine.
	Gain float64 `yaml:"Gain" json:"Gain"`
}

// QuietHoursConfig suppresses haptic feedback between local sunset and the
// next sunrise at the given coordinates.
type QuietHoursConfig struct {
	Enabled   bool    `yaml:"Enabled" json:"Enabled"`
	Latitude  float64 `yaml:"Latitude" json:"Latitude"`
	Longitude float64 `yaml:"Longitude" json:"Longitude"`
}

// LoggingConfig configures the slog setup.
type LoggingConfig struct {
	Level  string `yaml:"Level" json:"Level"`
	Format string `yaml:"Format" json:"Format"`
	File   string `yaml:"File" json:"File"`
}

// WebConfig configures the runtime configuration HTTP endpoint.
type WebConfig struct {
	Enabled bool   `yaml:"Enabled" json:"Enabled"`
	Listen  string `yaml:"Listen" json:"Listen"`
}

// Config is the full on-disk configuration.
type Config struct {
	RealHW     bool   `yaml:"-" json:"-"`
	Configfile string `yaml:"-" json:"-"`

	Engine     EngineConfig     `yaml:"Engine" json:"Engine"`
	Feedback   FeedbackConfig   `yaml:"Feedback" json:"Feedback"`
	QuietHours QuietHoursConfig `yaml:"QuietHours" json:"QuietHours"`
	Logging    LoggingConfig    `yaml:"Logging" json:"Logging"`
	Web        WebConfig        `yaml:"Web" json:"Web"`
}

// Validate checks the configuration for values the engines cannot work
// with.
func (c *Config) Validate() error {
	switch c.Engine.Type {
	case "gpio", "audio", "sim", "noop":
	default:
		return fmt.Errorf("unknown engine type: %q", c.Engine.Type)
	}
	if c.Feedback.Gain < 0 {
		return fmt.Errorf("feedback gain must not be negative, got %v", c.Feedback.Gain)
	}
	if c.Engine.GPIO.CycleLength <= 0 {
		return fmt.Errorf("GPIO cycle length must be positive, got %d", c.Engine.GPIO.CycleLength)
	}
	if c.Engine.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive, got %d", c.Engine.Audio.SampleRate)
	}
	if c.QuietHours.Enabled {
		if c.QuietHours.Latitude < -90 || c.QuietHours.Latitude > 90 {
			return fmt.Errorf("quiet hours latitude out of range: %v", c.QuietHours.Latitude)
		}
		if c.QuietHours.Longitude < -180 || c.QuietHours.Longitude > 180 {
			return fmt.Errorf("quiet hours longitude out of range: %v", c.QuietHours.Longitude)
		}
	}
	return nil
}

// applyDefaults fills zero values with workable defaults so a minimal
// config file stays short.
func (c *Config) applyDefaults() {
	if c.Engine.Type == "" {
		c.Engine.Type = "sim"
	}
	if c.Feedback.Gain == 0 {
		c.Feedback.Gain = 1.0
	}
	if c.Engine.GPIO.CycleLength == 0 {
		c.Engine.GPIO.CycleLength = 32
	}
	if c.Engine.GPIO.BaseFreqHz == 0 {
		c.Engine.GPIO.BaseFreqHz = 75
	}
	if c.Engine.GPIO.MaxFreqHz == 0 {
		c.Engine.GPIO.MaxFreqHz = 250
	}
	if c.Engine.GPIO.TransientDuration == 0 {
		c.Engine.GPIO.TransientDuration = 30 * time.Millisecond
	}
	if c.Engine.Audio.SampleRate == 0 {
		c.Engine.Audio.SampleRate = 44100
	}
	if c.Engine.Audio.BaseFreqHz == 0 {
		c.Engine.Audio.BaseFreqHz = 150
	}
	if c.Engine.Audio.MaxFreqHz == 0 {
		c.Engine.Audio.MaxFreqHz = 1200
	}
	if c.Engine.Audio.TransientDuration == 0 {
		c.Engine.Audio.TransientDuration = 80 * time.Millisecond
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Web.Listen == "" {
		c.Web.Listen = "localhost:8081"
	}
}

// ReadConfig reads and validates the configuration file. The realhw flag
// records whether the process was asked to drive real hardware; it is not
// part of the file itself.
func ReadConfig(cfile string, realhw bool) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	var conf Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}

	conf.applyDefaults()
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}

	conf.RealHW = realhw
	conf.Configfile = cfile
	return &conf, nil
}

// SaveConfig writes the configuration back to the given file.
func SaveConfig(cfile string, conf *Config) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("can't marshal config: %w", err)
	}
	if err := os.WriteFile(cfile, data, 0o644); err != nil {
		return fmt.Errorf("can't write config file %s: %w", cfile, err)
	}
	return nil
}
