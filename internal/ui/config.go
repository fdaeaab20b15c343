package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  spotgrid config`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runConfigInteractive()
		},
	}
}

func (a *App) runConfigInteractive() error {
	configPath := config.DefaultConfigPath()
	_, _ = fmt.Fprintf(a.out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		_, _ = fmt.Fprintln(a.out, "No config file found. Creating with default values...")
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		_, _ = fmt.Fprintf(a.out, "Created %s\n\n", configPath)
	}

	printConfig(a.out, cfg)

	reader := bufio.NewReader(os.Stdin)
	if !promptYesNo(a.out, reader, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Schedule.DefaultStep = promptInt(a.out, reader, "Default repeat step in slots (1, 2 or 4)", cfg.Schedule.DefaultStep)
	cfg.Schedule.RepeatStartSlot = promptInt(a.out, reader, "Week repeat first slot (0-47)", cfg.Schedule.RepeatStartSlot)
	cfg.Schedule.RepeatEndSlot = promptInt(a.out, reader, "Week repeat last slot (0-47)", cfg.Schedule.RepeatEndSlot)
	cfg.Schedule.WarningInterval.Duration = promptDuration(a.out, reader, "Warning interval", cfg.Schedule.WarningInterval.Duration)
	cfg.Storage.DBPath = promptValue(a.out, reader, "Database path", cfg.Storage.DBPath)
	cfg.Playback.StreamBaseURL = promptValue(a.out, reader, "Stream base URL", cfg.Playback.StreamBaseURL)
	cfg.Log.Level = promptValue(a.out, reader, "Log level", cfg.Log.Level)
	cfg.Log.File = promptValue(a.out, reader, "Log file (empty for stderr)", cfg.Log.File)
	cfg.UI.Color = promptValue(a.out, reader, "Color (auto, always, never)", cfg.UI.Color)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, _ = fmt.Fprintln(a.out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("Current configuration:\n")
	p("──────────────────────\n")
	p("[schedule]\n")
	p("  default_step      = %d\n", cfg.Schedule.DefaultStep)
	p("  repeat_start_slot = %d (%s)\n", cfg.Schedule.RepeatStartSlot, slotLabel(cfg.Schedule.RepeatStartSlot))
	p("  repeat_end_slot   = %d (%s)\n", cfg.Schedule.RepeatEndSlot, slotLabel(cfg.Schedule.RepeatEndSlot))
	p("  warning_interval  = %s\n", cfg.Schedule.WarningInterval.Duration)
	p("\n[storage]\n")
	p("  db_path           = %s\n", cfg.Storage.DBPath)
	p("\n[playback]\n")
	p("  stream_base_url   = %s\n", cfg.Playback.StreamBaseURL)
	p("\n[log]\n")
	p("  level             = %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		p("  file              = %s\n", cfg.Log.File)
		p("  max_size_mb       = %d\n", cfg.Log.MaxSizeMB)
		p("  max_backups       = %d\n", cfg.Log.MaxBackups)
		p("  max_age_days      = %d\n", cfg.Log.MaxAgeDays)
	}
	p("\n[ui]\n")
	p("  color             = %s\n", cfg.UI.Color)
}

func promptYesNo(w io.Writer, reader *bufio.Reader, question string) bool {
	_, _ = fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(w io.Writer, reader *bufio.Reader, label, current string) string {
	if current == "" {
		_, _ = fmt.Fprintf(w, "  %s: ", label)
	} else {
		_, _ = fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(w io.Writer, reader *bufio.Reader, label string, current int) int {
	for {
		value := promptValue(w, reader, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		_, _ = fmt.Fprintf(w, "  Invalid number %q\n", value)
	}
}

func promptDuration(w io.Writer, reader *bufio.Reader, label string, current time.Duration) time.Duration {
	for {
		value := promptValue(w, reader, label, current.String())
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
		_, _ = fmt.Fprintf(w, "  Invalid duration %q\n", value)
	}
}
