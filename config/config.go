package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration errors. They abort the whole run.
var ErrInvalid = errors.New("invalid configuration")

// DefaultFileName is looked up in the working directory and then $HOME.
const DefaultFileName = ".testledger.yaml"

// Config is the root configuration structure.
type Config struct {
	// Workers is the number of repositories processed at once; 0 means NumCPU-1.
	Workers int `yaml:"workers" json:"workers"`

	// StagingDir is where working copies are cloned.
	StagingDir string `yaml:"stagingDir" json:"stagingDir"`

	// OutputDir is where per-repository results go.
	OutputDir string `yaml:"outputDir" json:"outputDir"`

	// Format is csv or json.
	Format string `yaml:"format" json:"format"`

	// Provider is gogit or gitcli.
	Provider string `yaml:"provider" json:"provider"`

	// RenameDetect is off, simple or aggressive.
	RenameDetect string       `yaml:"renameDetect" json:"renameDetect"`
	LogLevel     string       `yaml:"logLevel" json:"logLevel"`
	Filters      FilterConfig `yaml:"filters" json:"filters"`
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// Supported values.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	ProviderGoGit  = "gogit"
	ProviderGitCLI = "gitcli"
)

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Workers:      0,
		StagingDir:   filepath.Join(os.TempDir(), "testledger"),
		OutputDir:    "results",
		Format:       FormatCSV,
		Provider:     ProviderGoGit,
		RenameDetect: "simple",
		LogLevel:     "info",
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
	}
}

// LoadConfig loads configuration from a file, merging with defaults.
// An explicit path must exist; default locations are optional. JSON files
// are accepted since JSON is valid YAML.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		// Try default locations
		candidates := []string{DefaultFileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, DefaultFileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Mark(errors.Wrapf(err, "read config %s", path), ErrInvalid)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse config %s", path), ErrInvalid)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks enumerated values and normalizes their case.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.RenameDetect = strings.ToLower(strings.TrimSpace(c.RenameDetect))

	if c.Workers < 0 {
		return errors.Mark(errors.Newf("workers must be >= 0, got %d", c.Workers), ErrInvalid)
	}
	switch c.Format {
	case FormatCSV, FormatJSON:
	default:
		return errors.Mark(errors.Newf("unknown format %q (expected csv or json)", c.Format), ErrInvalid)
	}
	switch c.Provider {
	case ProviderGoGit, ProviderGitCLI:
	default:
		return errors.Mark(errors.Newf("unknown provider %q (expected gogit or gitcli)", c.Provider), ErrInvalid)
	}
	switch c.RenameDetect {
	case "off", "simple", "aggressive":
	default:
		return errors.Mark(errors.Newf("unknown rename detection %q (expected off, simple or aggressive)", c.RenameDetect), ErrInvalid)
	}
	if c.StagingDir == "" {
		return errors.Mark(errors.New("stagingDir must not be empty"), ErrInvalid)
	}
	if c.OutputDir == "" {
		return errors.Mark(errors.New("outputDir must not be empty"), ErrInvalid)
	}
	return nil
}
