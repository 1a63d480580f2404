// Package config handles loading and validating WHM configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} placeholders in config values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interfacePattern matches names safe to hand to ifconfig.
var interfacePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ErrConfigFileNotFound is returned by Load when the specified config file does not exist.
var ErrConfigFileNotFound = errors.New("config file not found")

// Config is the top-level WHM configuration.
type Config struct {
	Listen           string     `yaml:"listen"`
	DBPath           string     `yaml:"db_path"`
	LogLevel         string     `yaml:"log_level"`
	LogFormat        string     `yaml:"log_format"`
	CommandTimeout   Duration   `yaml:"command_timeout"`
	WorkerPoolSize   int        `yaml:"worker_pool_size"`
	Demo             string     `yaml:"demo"`
	NetworkInterface string     `yaml:"network_interface"`
	Record           Retention  `yaml:"record"`
	Schedule         Schedule   `yaml:"schedule"`
	SSH              *SSHConfig `yaml:"ssh,omitempty"`
}

// Schedule holds the trigger interval per scope.
type Schedule struct {
	Hours Duration `yaml:"hours"`
	Days  Duration `yaml:"days"`
	Weeks Duration `yaml:"weeks"`
}

// SSHConfig describes SSH access to a remote host to collect from.
type SSHConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	KeyPath string `yaml:"key_path"`
}

// Duration wraps time.Duration with YAML string parsing support.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Load reads configuration from a YAML file. With no path the defaults and
// environment overrides are used. If a path is given and the file does not
// exist, ErrConfigFileNotFound is returned.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(expandEnvVars(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("log_format must be one of: text, json")
	}
	validDemo := map[string]bool{"auto": true, "always": true, "never": true}
	if !validDemo[c.Demo] {
		return fmt.Errorf("demo must be one of: auto, always, never")
	}
	if c.CommandTimeout.Duration <= 0 {
		return fmt.Errorf("command_timeout must be > 0")
	}
	if c.WorkerPoolSize < 1 {
		return fmt.Errorf("worker_pool_size must be >= 1")
	}
	if !interfacePattern.MatchString(c.NetworkInterface) {
		return fmt.Errorf("network_interface %q is not a valid interface name", c.NetworkInterface)
	}
	if err := c.Record.Validate(); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	for name, d := range map[string]Duration{"hours": c.Schedule.Hours, "days": c.Schedule.Days, "weeks": c.Schedule.Weeks} {
		if d.Duration <= 0 {
			return fmt.Errorf("schedule.%s must be > 0", name)
		}
	}
	if s := c.SSH; s != nil {
		if s.Host == "" {
			return fmt.Errorf("ssh: host is required")
		}
		if s.User == "" {
			return fmt.Errorf("ssh: user is required")
		}
		if s.KeyPath == "" {
			return fmt.Errorf("ssh: key_path is required")
		}
		if s.Port < 0 || s.Port > 65535 {
			return fmt.Errorf("ssh: port must be between 0 and 65535")
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Listen:           ":5000",
		DBPath:           "chart_data.db",
		LogLevel:         "info",
		LogFormat:        "text",
		CommandTimeout:   Duration{30 * time.Second},
		WorkerPoolSize:   4,
		Demo:             "auto",
		NetworkInterface: "eth0",
		Record:           DefaultRetention(),
		Schedule: Schedule{
			Hours: Duration{1 * time.Hour},
			Days:  Duration{24 * time.Hour},
			Weeks: Duration{168 * time.Hour},
		},
	}
}

// expandEnvVars replaces ${VAR_NAME} placeholders in raw YAML with the
// corresponding environment variable values. Unset variables are replaced
// with an empty string, which will then fail validation with a clear error.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		key := string(match[2 : len(match)-1]) // strip ${ and }
		return []byte(os.Getenv(key))
	})
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WHM_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("WHM_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WHM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WHM_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("WHM_DEMO"); v != "" {
		cfg.Demo = v
	}
	if v := os.Getenv("WHM_NETWORK_INTERFACE"); v != "" {
		cfg.NetworkInterface = v
	}
	if v := os.Getenv("WHM_COMMAND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CommandTimeout = Duration{d}
		}
	}
	if v := os.Getenv("WHM_WORKER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerPoolSize = n
		}
	}
	applyRetentionEnv(&cfg.Record)

	// Remote host from env vars (only if no YAML ssh block configured).
	if cfg.SSH == nil {
		if host := os.Getenv("WHM_SSH_HOST"); host != "" {
			ssh := &SSHConfig{
				Host:    host,
				User:    os.Getenv("WHM_SSH_USER"),
				KeyPath: os.Getenv("WHM_SSH_KEY_PATH"),
			}
			if n, err := strconv.Atoi(os.Getenv("WHM_SSH_PORT")); err == nil {
				ssh.Port = n
			}
			cfg.SSH = ssh
		}
	}
}
