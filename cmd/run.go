package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/masmgr/testledger/config"
	"github.com/masmgr/testledger/internal/classify"
	"github.com/masmgr/testledger/internal/git"
	"github.com/masmgr/testledger/internal/logging"
	"github.com/masmgr/testledger/internal/orchestrator"
	"github.com/masmgr/testledger/internal/output"
	"github.com/masmgr/testledger/internal/pool"
	"github.com/masmgr/testledger/internal/workcopy"
)

// runAction handles `testledger <lang> <repos-file>`. Only usage and
// configuration problems produce a non-zero exit; failed repositories are
// reported and logged.
func runAction(c *cli.Context) error {
	if c.NArg() != 2 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("expected exactly two arguments: <py|ts|js> <repos-file>", 1)
	}

	lang, err := classify.ParseLanguage(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger, err := logging.New(cfg.LogLevel, c.App.ErrWriter)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = logger.Sync() }()

	tasks, err := LoadTasks(c.Args().Get(1), lang, logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := orchestrator.New(
		workcopy.NewCloneStore(cfg.StagingDir),
		newProvider(cfg.Provider),
		output.NewResultWriter(format, cfg.OutputDir),
		logger,
		orchestrator.Options{
			Include:      cfg.Filters.Include,
			Exclude:      cfg.Filters.Exclude,
			RenameDetect: git.ParseRenameDetectMode(cfg.RenameDetect),
		},
	)

	return runTasks(ctx, c, cfg, proc, tasks, logger)
}

func runTasks(ctx context.Context, c *cli.Context, cfg *config.Config, proc *orchestrator.Processor, tasks []orchestrator.Task, logger *zap.Logger) error {
	start := time.Now()
	workers := cfg.Workers
	if workers < 1 {
		workers = pool.DefaultWorkers()
	}

	color.New(color.FgGreen).Fprintf(c.App.Writer, "Analyzing %d repositories with %d workers\n", len(tasks), workers)
	logger.Debug("run started",
		zap.Int("repositories", len(tasks)),
		zap.Int("workers", workers),
		zap.String("staging_dir", cfg.StagingDir),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("provider", cfg.Provider),
	)

	outcomes := pool.Run(ctx, workers, tasks, proc.ProcessRepository)

	rows := make([]output.SummaryRow, len(outcomes))
	for i, o := range outcomes {
		rows[i] = output.SummaryRow{
			Name:          o.Result.Name,
			URL:           o.Task.URL,
			TestFiles:     len(o.Result.Counts),
			Modifications: output.TotalModifications(o.Result.Counts),
			Commits:       o.Result.Commits,
			Duration:      o.Result.Duration,
			Err:           o.Err,
		}
	}

	if !c.Bool("quiet") {
		fmt.Fprintln(c.App.Writer)
		output.WriteSummary(c.App.Writer, rows)
	}

	if failed := pool.Failed(outcomes); failed > 0 {
		color.New(color.FgYellow).Fprintf(c.App.Writer, "%d of %d repositories failed, see log for details\n", failed, len(outcomes))
	}
	fmt.Fprintf(c.App.ErrWriter, "\nCompleted in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
