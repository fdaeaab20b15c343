package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/config"
	"github.com/javiermolinar/spotgrid/internal/db"
	"github.com/javiermolinar/spotgrid/internal/editstate"
	"github.com/javiermolinar/spotgrid/internal/logging"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo      campaign.Repository
	config    *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
	root      *cobra.Command
	out       io.Writer
	errOut    io.Writer
	now       func() time.Time
	debug     bool // Enable debug logging
	noColor   bool
}

// NewApp creates a new CLI application with the given config.
// A nil repo is opened lazily from the configured database path.
func NewApp(repo campaign.Repository, cfg *config.Config) *App {
	a := &App{
		repo:   repo,
		config: cfg,
		logger: zerolog.Nop(),
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}

	a.root = &cobra.Command{
		Use:   "spotgrid",
		Short: "Weekly slot scheduling for radio ad campaigns",
		Long: `Spotgrid plans radio advertising campaigns on a weekly grid of
half-hour broadcast slots.

Each campaign owns its own play counts per slot. The week view sums every
active campaign so you can see how busy each slot is, and the queue shows
what will air, highest priority first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.campaignCmd())
	a.root.AddCommand(a.slotCmd())
	a.root.AddCommand(a.repeatCmd())
	a.root.AddCommand(a.copyWeekCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.breakdownCmd())
	a.root.AddCommand(a.queueCmd())
	a.root.AddCommand(a.previewCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(a.out, "spotgrid %s (commit: %s)\n", Version, Commit)
		},
	}
}

// setup applies color settings and builds the logger once flags are parsed.
func (a *App) setup() error {
	switch {
	case a.noColor || a.config.UI.Color == "never":
		DisableColor()
	case a.config.UI.Color == "always":
		EnableColor()
	}

	if a.logCloser != nil {
		return nil
	}
	logger, closer, err := logging.New(a.config.Log, a.debug)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	a.logger = logger
	a.logCloser = closer
	return nil
}

// ensureRepo opens the configured database on first use.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	path := a.config.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.repo = repo
	a.logger.Debug().Str("path", path).Msg("database opened")
	return nil
}

// session loads every campaign into a fresh edit session.
func (a *App) session(ctx context.Context) (*editstate.Store, *editstate.Guard, error) {
	if err := a.ensureRepo(); err != nil {
		return nil, nil, err
	}
	store := editstate.NewStore(a.repo, a.logger)
	store.Now = a.now
	if err := store.Load(ctx, nil); err != nil {
		return nil, nil, err
	}

	guard := editstate.NewGuard(store, func(err error) {
		_, _ = fmt.Fprintf(a.errOut, "%s %v\n", formatWarn("warning:"), err)
	})
	guard.Now = a.now
	guard.Interval = a.config.Schedule.WarningInterval.Duration
	return store, guard, nil
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the repository and the log file.
func (a *App) Close() error {
	var err error
	if a.repo != nil {
		err = a.repo.Close()
		a.repo = nil
	}
	if a.logCloser != nil {
		if cerr := a.logCloser.Close(); err == nil {
			err = cerr
		}
		a.logCloser = nil
	}
	return err
}
