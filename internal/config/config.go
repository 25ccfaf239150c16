package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/docs-e2e/internal/browser"
	"github.com/eugenenazirov/docs-e2e/internal/environments"
)

const (
	defaultReportDir = "test-results"
	defaultFormat    = "pretty"
)

var defaultFeaturePaths = []string{"features"}

// Config aggregates run configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Profile defaults
type Config struct {
	Profile      environments.Profile
	Headless     bool
	SlowMo       time.Duration
	Timeout      time.Duration
	Concurrency  int
	Retries      int
	Device       string
	FeaturePaths []string
	ReportDir    string
	Formats      []string
	Tags         string
	Strict       bool
	LogLevel     string
	ChromePath   string
}

// ActionTimeout bounds one element interaction.
func (c Config) ActionTimeout() time.Duration {
	return c.Timeout / 6
}

// NavigationTimeout bounds one page load.
func (c Config) NavigationTimeout() time.Duration {
	return c.Timeout / 2
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Env         string   `yaml:"env"`
	Headless    *bool    `yaml:"headless"`
	SlowMo      string   `yaml:"slow_mo"`
	Timeout     string   `yaml:"timeout"`
	Concurrency int      `yaml:"concurrency"`
	Retries     *int     `yaml:"retries"`
	Device      string   `yaml:"device"`
	Features    []string `yaml:"features"`
	ReportDir   string   `yaml:"report_dir"`
	Formats     []string `yaml:"formats"`
	Tags        string   `yaml:"tags"`
	LogLevel    string   `yaml:"log_level"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile   string
	Env          *string
	Headless     *bool
	SlowMo       *time.Duration
	Timeout      *time.Duration
	Concurrency  *int
	Retries      *int
	Device       *string
	FeaturePaths []string
	ReportDir    *string
	Formats      []string
	Tags         *string
	LogLevel     *string
}

// Load resolves the environment profile and layers overrides on top of it:
// CLI flags > YAML config > Environment variables > Profile defaults
func Load(overrides *CLIOverrides) (Config, error) {
	var yamlCfg *yamlConfig
	if overrides != nil && overrides.ConfigFile != "" {
		var err error
		yamlCfg, err = loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
	}

	profile, err := environments.Resolve(profileName(overrides, yamlCfg))
	if err != nil {
		return Config{}, err
	}

	cfg := defaultConfig(profile)

	// Environment variables sit above the profile defaults.
	applyEnvConfig(&cfg)

	if yamlCfg != nil {
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, err
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// profileName picks the explicit environment name; an empty result lets the
// resolver fall back to TEST_ENV and then to production.
func profileName(overrides *CLIOverrides, yamlCfg *yamlConfig) string {
	if overrides != nil && overrides.Env != nil && *overrides.Env != "" {
		return *overrides.Env
	}
	if yamlCfg != nil && yamlCfg.Env != "" {
		return yamlCfg.Env
	}
	return ""
}

// defaultConfig derives a Config from the profile.
func defaultConfig(profile environments.Profile) Config {
	return Config{
		Profile:      profile,
		Headless:     profile.Headless,
		SlowMo:       profile.SlowMo(),
		Timeout:      profile.Timeout(),
		Concurrency:  profile.Workers,
		Retries:      profile.Retries,
		Device:       browser.DefaultDevice,
		FeaturePaths: append([]string(nil), defaultFeaturePaths...),
		ReportDir:    defaultReportDir,
		Formats:      []string{defaultFormat},
		Strict:       true,
		LogLevel:     "info",
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Headless != nil {
		cfg.Headless = *yamlCfg.Headless
	}

	if yamlCfg.SlowMo != "" {
		d, err := time.ParseDuration(yamlCfg.SlowMo)
		if err != nil {
			return fmt.Errorf("parse slow_mo: %w", err)
		}
		cfg.SlowMo = d
	}

	if yamlCfg.Timeout != "" {
		d, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if yamlCfg.Concurrency > 0 {
		cfg.Concurrency = yamlCfg.Concurrency
	}

	if yamlCfg.Retries != nil {
		cfg.Retries = *yamlCfg.Retries
	}

	if yamlCfg.Device != "" {
		cfg.Device = yamlCfg.Device
	}

	if len(yamlCfg.Features) > 0 {
		cfg.FeaturePaths = yamlCfg.Features
	}

	if yamlCfg.ReportDir != "" {
		cfg.ReportDir = yamlCfg.ReportDir
	}

	if len(yamlCfg.Formats) > 0 {
		cfg.Formats = yamlCfg.Formats
	}

	if yamlCfg.Tags != "" {
		cfg.Tags = yamlCfg.Tags
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if raw, ok := os.LookupEnv("HEADLESS"); ok && strings.TrimSpace(raw) != "" {
		cfg.Headless = strings.TrimSpace(raw) != "false"
	}

	if ms := strings.TrimSpace(os.Getenv("SLOW_MO")); ms != "" {
		if value, err := strconv.Atoi(ms); err == nil && value >= 0 {
			cfg.SlowMo = time.Duration(value) * time.Millisecond
		}
	}

	if ms := strings.TrimSpace(os.Getenv("TIMEOUT")); ms != "" {
		if value, err := strconv.Atoi(ms); err == nil && value > 0 {
			cfg.Timeout = time.Duration(value) * time.Millisecond
		}
	}

	if device := strings.TrimSpace(os.Getenv("DEVICE")); device != "" {
		cfg.Device = device
	}

	if dir := strings.TrimSpace(os.Getenv("REPORT_DIR")); dir != "" {
		cfg.ReportDir = dir
	}

	if tags := strings.TrimSpace(os.Getenv("TAGS")); tags != "" {
		cfg.Tags = tags
	}

	if path := strings.TrimSpace(os.Getenv("CHROME_PATH")); path != "" {
		cfg.ChromePath = path
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Headless != nil {
		cfg.Headless = *overrides.Headless
	}

	if overrides.SlowMo != nil && *overrides.SlowMo >= 0 {
		cfg.SlowMo = *overrides.SlowMo
	}

	if overrides.Timeout != nil && *overrides.Timeout > 0 {
		cfg.Timeout = *overrides.Timeout
	}

	if overrides.Concurrency != nil && *overrides.Concurrency > 0 {
		cfg.Concurrency = *overrides.Concurrency
	}

	if overrides.Retries != nil && *overrides.Retries >= 0 {
		cfg.Retries = *overrides.Retries
	}

	if overrides.Device != nil && *overrides.Device != "" {
		cfg.Device = *overrides.Device
	}

	if len(overrides.FeaturePaths) > 0 {
		cfg.FeaturePaths = overrides.FeaturePaths
	}

	if overrides.ReportDir != nil && *overrides.ReportDir != "" {
		cfg.ReportDir = *overrides.ReportDir
	}

	if len(overrides.Formats) > 0 {
		cfg.Formats = overrides.Formats
	}

	if overrides.Tags != nil && *overrides.Tags != "" {
		cfg.Tags = *overrides.Tags
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if cfg.SlowMo < 0 {
		return fmt.Errorf("slow-mo must be >= 0")
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1")
	}
	if cfg.Retries < 0 {
		return fmt.Errorf("retries must be >= 0")
	}
	if _, err := browser.LookupDevice(cfg.Device); err != nil {
		return err
	}
	if len(cfg.FeaturePaths) == 0 {
		return fmt.Errorf("at least one feature path is required")
	}
	if cfg.ReportDir == "" {
		return fmt.Errorf("report directory cannot be empty")
	}
	return nil
}
