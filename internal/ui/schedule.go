package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/aggregate"
	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/playback"
)

func (a *App) breakdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "breakdown <day> <slot>",
		Short:   "Show which campaigns play in a slot",
		Example: `  spotgrid breakdown monday 08:00`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, day, err := parseDay(args[0], a.now())
			if err != nil {
				return err
			}
			idx, err := parseSlot(args[1])
			if err != nil {
				return err
			}
			store, _, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			printBreakdown(a.out, day, idx, store.Breakdown(date, day, idx))
			return nil
		},
	}
}

func printBreakdown(w io.Writer, day string, idx int, contributions []aggregate.Contribution) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("%s %s %s\n", formatHeader("Slot"), day, grid.SlotTime(idx))
	if len(contributions) == 0 {
		p("  %s\n", formatMuted("Nothing scheduled."))
		return
	}
	total := 0
	for _, c := range contributions {
		total += c.PlayCount
		p("  %s  %-30s ×%d\n", formatPriority(c.Priority), truncate(c.CampaignName, 30), c.PlayCount)
	}
	p("  %s %d\n", formatHeader("Total:"), total)
}

func (a *App) queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue <day> <slot>",
		Short: "Show the playback queue of a slot",
		Long: `List the content that airs in a slot, in playback order.

Higher priority campaigns play first. Each campaign plays its whole
content list once per scheduled play.`,
		Example: `  spotgrid queue today 18:30`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, day, err := parseDay(args[0], a.now())
			if err != nil {
				return err
			}
			idx, err := parseSlot(args[1])
			if err != nil {
				return err
			}
			campaigns, err := a.activeCampaigns(cmd)
			if err != nil {
				return err
			}

			queue := playback.BuildQueue(campaigns, day, idx)
			p := func(format string, args ...any) { _, _ = fmt.Fprintf(a.out, format, args...) }
			p("%s %s %s\n", formatHeader("Queue"), day, grid.SlotTime(idx))
			if len(queue) == 0 {
				p("  %s\n", formatMuted("Nothing scheduled."))
				return nil
			}
			printQueue(a.out, queue, playback.BaseURLResolver{BaseURL: a.config.Playback.StreamBaseURL})
			return nil
		},
	}
}

func printQueue(w io.Writer, queue []string, resolver playback.StreamResolver) {
	for i, id := range queue {
		url, err := resolver.StreamURL(id)
		if err != nil {
			url = formatError(err.Error())
		}
		_, _ = fmt.Fprintf(w, "  %2d. %-24s %s\n", i+1, id, formatMuted(url))
	}
}

func (a *App) previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [day]",
		Short: "Show every slot's queue for one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := ""
			if len(args) == 1 {
				day = args[0]
			}
			_, date, err := parseDay(day, a.now())
			if err != nil {
				return err
			}
			campaigns, err := a.activeCampaigns(cmd)
			if err != nil {
				return err
			}
			printPreview(a.out, date, playback.DailyPreview(campaigns, date))
			return nil
		},
	}
}

func printPreview(w io.Writer, date string, slots []playback.SlotPreview) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("%s %s\n", formatHeader("Preview"), date)
	if len(slots) == 0 {
		p("  %s\n", formatMuted("Nothing scheduled."))
		return
	}
	for _, s := range slots {
		p("  %s  %s %s\n", s.Time, formatMuted(fmt.Sprintf("(%d)", len(s.Queue))), truncate(strings.Join(s.Queue, ", "), 60))
	}
}

func (a *App) activeCampaigns(cmd *cobra.Command) ([]*campaign.Campaign, error) {
	if err := a.ensureRepo(); err != nil {
		return nil, err
	}
	active := campaign.StatusActive
	campaigns, err := a.repo.ListCampaigns(cmd.Context(), &active)
	if err != nil {
		return nil, fmt.Errorf("fetching campaigns: %w", err)
	}
	return campaigns, nil
}
