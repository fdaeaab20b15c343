package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/editstate"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/repeat"
)

// editSession runs fn against the selected campaign, then saves every
// changed campaign and prints the per-campaign results.
func (a *App) editSession(ctx context.Context, ref string, fn func(*editstate.Store, *editstate.Guard) error) error {
	store, guard, err := a.session(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(store, ref)
	if err != nil {
		return err
	}
	if err := store.Select(id); err != nil {
		return err
	}
	if err := fn(store, guard); err != nil {
		return err
	}
	return printSaveResults(a.out, store, store.SaveAll(ctx))
}

func (a *App) slotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Edit a campaign's play counts",
		Long: `Edit play counts of one campaign for one day.

Slots are given as start times (10:00), slot indexes (20), comma lists
(08:00,12:00) or inclusive ranges (06:00-09:30). Slots that already
started or fall outside the campaign dates are skipped with a warning.`,
	}
	cmd.AddCommand(a.slotSetCmd())
	cmd.AddCommand(a.slotIncCmd())
	cmd.AddCommand(a.slotDecCmd())
	return cmd
}

func (a *App) slotSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <day> <count> <slot>...",
		Short: "Set the play count of slots",
		Long: `Set the play count of one or more slots. A count of 0 clears them.

Examples:
  spotgrid slot set 3f2a monday 2 08:00 12:00
  spotgrid slot set 3f2a 2024-06-12 0 06:00-09:30`,
		Args: cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("%w: %q", editstate.ErrInvalidCount, args[2])
			}
			return a.runSlotEdit(cmd.Context(), args[0], args[1], args[3:], func(g *editstate.Guard, date string, idx int) error {
				return g.UpdateSlot(date, idx, count)
			})
		},
	}
}

func (a *App) slotIncCmd() *cobra.Command {
	var times int
	cmd := &cobra.Command{
		Use:     "inc <id> <day> <slot>...",
		Short:   "Add plays to slots",
		Example: `  spotgrid slot inc 3f2a today 18:00 --times 2`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSlotEdit(cmd.Context(), args[0], args[1], args[2:], func(g *editstate.Guard, date string, idx int) error {
				for range times {
					if err := g.Increment(date, idx); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&times, "times", "n", 1, "Plays to add per slot")
	return cmd
}

func (a *App) slotDecCmd() *cobra.Command {
	var times int
	cmd := &cobra.Command{
		Use:   "dec <id> <day> <slot>...",
		Short: "Remove plays from slots",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSlotEdit(cmd.Context(), args[0], args[1], args[2:], func(g *editstate.Guard, date string, idx int) error {
				for range times {
					if err := g.Decrement(date, idx); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&times, "times", "n", 1, "Plays to remove per slot")
	return cmd
}

func (a *App) runSlotEdit(ctx context.Context, ref, day string, slotArgs []string, apply func(*editstate.Guard, string, int) error) error {
	_, date, err := parseDay(day, a.now())
	if err != nil {
		return err
	}
	indexes, err := parseSlotList(slotArgs)
	if err != nil {
		return err
	}

	return a.editSession(ctx, ref, func(_ *editstate.Store, guard *editstate.Guard) error {
		skipped := 0
		for _, idx := range indexes {
			err := apply(guard, date, idx)
			var rejected *editstate.RejectedEditError
			switch {
			case errors.As(err, &rejected):
				skipped++
			case err != nil:
				return err
			}
		}
		if skipped > 0 {
			_, _ = fmt.Fprintf(a.out, "%s %d of %d slots\n", formatWarn("skipped"), skipped, len(indexes))
		}
		return nil
	})
}

// parseSlotList expands slot arguments into sorted unique indexes.
func parseSlotList(args []string) ([]int, error) {
	var seen [grid.SlotsPerDay]bool
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			from, to, isRange := strings.Cut(part, "-")
			first, err := parseSlot(from)
			if err != nil {
				return nil, err
			}
			last := first
			if isRange {
				if last, err = parseSlot(to); err != nil {
					return nil, err
				}
				if last < first {
					return nil, fmt.Errorf("%w: range %q ends before it starts", grid.ErrInvalidSlot, part)
				}
			}
			for i := first; i <= last; i++ {
				seen[i] = true
			}
		}
	}

	var out []int
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no slots given", grid.ErrInvalidSlot)
	}
	return out, nil
}

func (a *App) repeatCmd() *cobra.Command {
	var (
		step  string
		scope string
		from  string
		to    string
	)

	cmd := &cobra.Command{
		Use:   "repeat <id> <day> <slot>",
		Short: "Repeat a slot's plays through the day or week",
		Long: `Copy the play count of a scheduled slot to later slots.

With --scope day every scheduled slot of the day at that time is repeated
every step until midnight. With --scope week the pattern from that slot is
laid on each remaining day of the week within --from and --to, keeping
each day's own play count where it has one. Generated slots that already
started or fall outside the campaign dates are skipped.

Examples:
  spotgrid repeat 3f2a monday 05:00 --step 1h
  spotgrid repeat 3f2a monday 06:00 --scope week --step 2h --from 06:00 --to 22:00`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekDate, _, err := parseDay(args[1], a.now())
			if err != nil {
				return err
			}
			opts := repeat.Options{
				Step:       a.config.Schedule.DefaultStep,
				RangeStart: a.config.Schedule.RepeatStartSlot,
				RangeEnd:   a.config.Schedule.RepeatEndSlot,
			}
			if opts.FilterSlot, err = parseSlot(args[2]); err != nil {
				return err
			}
			if opts.Scope, err = repeat.ParseScope(scope); err != nil {
				return err
			}
			if step != "" {
				if opts.Step, err = parseStep(step); err != nil {
					return err
				}
			}
			if from != "" {
				if opts.RangeStart, err = parseSlot(from); err != nil {
					return err
				}
			}
			if to != "" {
				if opts.RangeEnd, err = parseSlot(to); err != nil {
					return err
				}
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			return a.editSession(cmd.Context(), args[0], func(_ *editstate.Store, guard *editstate.Guard) error {
				res, err := guard.Repeat(opts, weekDate)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "Repeated %d source slots into %d slots\n", res.Sources, res.Generated)
				printSkipped(a.out, res.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&step, "step", "", "Interval: 30m, 1h or 2h (default from config)")
	cmd.Flags().StringVar(&scope, "scope", string(repeat.ScopeDay), "Repeat through the day or the week")
	cmd.Flags().StringVar(&from, "from", "", "Week scope: first slot (default from config)")
	cmd.Flags().StringVar(&to, "to", "", "Week scope: last slot (default from config)")

	return cmd
}

// parseStep accepts slot counts (1, 2, 4) or intervals (30m, 1h, 2h).
func parseStep(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "30m":
		return repeat.StepHalfHour, nil
	case "2", "1h", "60m":
		return repeat.StepHourly, nil
	case "4", "2h", "120m":
		return repeat.StepTwoHours, nil
	default:
		return 0, fmt.Errorf("%w: %q", repeat.ErrInvalidStep, s)
	}
}

func (a *App) copyWeekCmd() *cobra.Command {
	var (
		from   string
		to     string
		source string
	)

	cmd := &cobra.Command{
		Use:   "copy-week <id>",
		Short: "Copy a week of slots",
		Long: `Copy one week of a campaign's slots onto another week, replacing the
slots the target week had. With --campaign, the other campaign's slots for
the target week are laid over this campaign's instead.

Slots that already started or fall outside the campaign dates are left
as they are.

Examples:
  spotgrid copy-week 3f2a --from today --to next-week
  spotgrid copy-week 3f2a --campaign 9c1d --to next-week`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			toDate, _, err := parseDay(to, now)
			if err != nil {
				return err
			}

			if source != "" {
				return a.editSession(cmd.Context(), args[0], func(store *editstate.Store, guard *editstate.Guard) error {
					srcID, err := resolveID(store, source)
					if err != nil {
						return err
					}
					res, err := guard.CopyFromCampaign(srcID, toDate)
					if err != nil {
						return err
					}
					a.printCopied(res)
					return nil
				})
			}

			fromDate, _, err := parseDay(from, now)
			if err != nil {
				return err
			}
			return a.editSession(cmd.Context(), args[0], func(_ *editstate.Store, guard *editstate.Guard) error {
				res, err := guard.CopyWeek(fromDate, toDate)
				if err != nil {
					return err
				}
				a.printCopied(res)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Any day of the source week (default this week)")
	cmd.Flags().StringVar(&to, "to", "", "Any day of the target week")
	cmd.Flags().StringVar(&source, "campaign", "", "Copy from another campaign instead")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (a *App) printCopied(res editstate.CopyResult) {
	_, _ = fmt.Fprintf(a.out, "Copied %d slots\n", res.Copied)
	printSkipped(a.out, res.Skipped)
}

func printSkipped(w io.Writer, n int) {
	if n > 0 {
		_, _ = fmt.Fprintf(w, "%s %d slots that cannot be edited\n", formatWarn("skipped"), n)
	}
}
