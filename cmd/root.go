package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/testledger/config"
	"github.com/masmgr/testledger/internal/git"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "testledger",
		Usage:     "Count commits touching test files across repositories",
		UsageText: "testledger [options] <py|ts|js> <repos-file>",
		ArgsUsage: "<py|ts|js> <repos-file>",
		Version:   "1.0.0",
		Flags:     flags(),
		Action:    runAction,
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Number of repositories processed concurrently (default: CPUs - 1)",
		},
		&cli.StringFlag{
			Name:  "staging-dir",
			Usage: "Directory working copies are cloned into",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory per-repository results are written to",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Result file format (csv, json)",
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: "History backend (gogit, gitcli)",
		},
		&cli.StringFlag{
			Name:  "rename-detect",
			Usage: "Rename detection mode (off, simple, aggressive)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Do not print the summary table",
		},
	}
}

// parseRenameDetectFlag maps a rename detection flag value, aliases
// included, to its canonical config value.
func parseRenameDetectFlag(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "simple", "exact", "true", "on":
		return "simple", nil
	case "off", "none", "false":
		return "off", nil
	case "aggressive", "similarity":
		return "aggressive", nil
	default:
		return "", errors.Mark(errors.Newf("invalid rename-detect value %q (expected off, simple or aggressive)", s), config.ErrInvalid)
	}
}

// loadConfig loads configuration from file or defaults and applies flag
// overrides on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("staging-dir") {
		cfg.StagingDir = c.String("staging-dir")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("provider") {
		cfg.Provider = c.String("provider")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("rename-detect") {
		mode, err := parseRenameDetectFlag(c.String("rename-detect"))
		if err != nil {
			return nil, err
		}
		cfg.RenameDetect = mode
	}

	// Apply filter overrides from CLI
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newProvider returns the history backend named by the config.
func newProvider(name string) git.HistoryProvider {
	if name == config.ProviderGitCLI {
		return git.NewCLIProvider()
	}
	return git.NewGoGitProvider()
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
