package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/dateutil"
	"github.com/javiermolinar/spotgrid/internal/summary"
	"github.com/javiermolinar/spotgrid/internal/week"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		day      string
		shift    int
		prev     bool
		next     bool
		today    bool
		allSlots bool
	)

	cmd := &cobra.Command{
		Use:   "week [day]",
		Short: "Show the combined schedule of a week",
		Long: `Display the summed play counts of every active campaign for one week
(Sunday to Saturday) as a heatmap, with daily totals, the busiest slot and
each campaign's share.

Examples:
  spotgrid week
  spotgrid week --shift -2
  spotgrid week 2024-06-12 --next
  spotgrid week 2024-06-12 --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				day = args[0]
			}
			date, _, err := parseDay(day, a.now())
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			win := week.NewWindow(date)
			if today {
				win.Today(a.now())
			}
			win.Shift(shift)
			switch {
			case prev:
				win.ShiftBackward()
			case next:
				win.ShiftForward()
			}

			s, err := summary.BuildWeekSummary(cmd.Context(), a.repo, win.Current())
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}
			printWeekSummary(a.out, s, win, heatmapOpts{
				CellWidth: cellWidthFor(termWidth()),
				AllSlots:  allSlots,
			})
			return nil
		},
	}

	cmd.Flags().IntVarP(&shift, "shift", "s", 0, "Move the displayed week by n weeks")
	cmd.Flags().BoolVar(&prev, "prev", false, "Show the week before")
	cmd.Flags().BoolVar(&next, "next", false, "Show the week after")
	cmd.Flags().BoolVar(&today, "today", false, "Start from the current week, ignoring the day argument")
	cmd.MarkFlagsMutuallyExclusive("prev", "next")
	cmd.Flags().BoolVarP(&allSlots, "all", "a", false, "Show every slot, not only the busy hours")
	return cmd
}

func printWeekSummary(w io.Writer, s *summary.WeekSummary, win *week.Window, opts heatmapOpts) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("\n  %s\n", formatHeader("WEEK: "+win.Label()))
	defer p("  %s\n\n", formatMuted(fmt.Sprintf("prev: %s   next: %s",
		dateutil.FormatDate(win.Previous()), dateutil.FormatDate(win.Next()))))

	if len(s.Slots) == 0 {
		p("  %s\n", formatMuted("No plays scheduled for this week."))
		return
	}

	p("%s\n", renderHeatmap(s, opts))

	p("  %s %d plays", formatHeader("Total:"), s.TotalPlays)
	if s.HasPeak {
		p("   %s %s %s (%d)", formatHeader("Peak:"), s.Peak.Date, slotLabel(s.Peak.Index), s.Peak.PlayCount)
	}
	p("\n")

	if len(s.Campaigns) == 0 {
		return
	}
	p("\n  %s\n", formatHeader("CAMPAIGNS"))
	p("  %s\n", strings.Repeat("─", 60))
	for _, c := range s.Campaigns {
		p("  %s  %-30s %5d plays  %s\n",
			formatPriority(c.Priority),
			truncate(c.Name, 30),
			c.Plays,
			formatMuted(formatDuration(c.AirtimeSeconds)),
		)
	}
}
