package config

// RuntimeConfig defines the subset of the configuration that can be
// safely modified while the service is running, either through the web
// API or by editing the config file. It excludes engine selection and
// other settings that require a restart.
type RuntimeConfig struct {
	Feedback   FeedbackConfig   `yaml:"Feedback" json:"Feedback"`
	QuietHours QuietHoursConfig `yaml:"QuietHours" json:"QuietHours"`
}

// Runtime extracts the runtime-changeable subset of the configuration.
func (c *Config) Runtime() RuntimeConfig {
	return RuntimeConfig{
		Feedback:   c.Feedback,
		QuietHours: c.QuietHours,
	}
}
