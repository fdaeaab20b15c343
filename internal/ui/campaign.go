package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/dateutil"
	"github.com/javiermolinar/spotgrid/internal/editstate"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/week"
)

var errAmbiguousID = errors.New("ambiguous campaign id")

func (a *App) campaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaign",
		Aliases: []string{"c"},
		Short:   "Manage campaigns",
	}
	cmd.AddCommand(a.campaignAddCmd())
	cmd.AddCommand(a.campaignListCmd())
	cmd.AddCommand(a.campaignShowCmd())
	cmd.AddCommand(a.campaignToggleCmd())
	cmd.AddCommand(a.campaignCloneCmd())
	cmd.AddCommand(a.campaignDeleteCmd())
	return cmd
}

func (a *App) campaignAddCmd() *cobra.Command {
	var (
		start    string
		end      string
		category string
		note     string
		priority int
		contents []string
		activate bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a campaign",
		Long: `Create a draft campaign.

Dates accept YYYY-MM-DD, today, tomorrow or a weekday name.
Content is given as id[:title[:seconds]] and may be repeated.

Examples:
  spotgrid campaign add "Summer Sale" --start 2024-06-01 --end 2024-06-30
  spotgrid campaign add Bakery -p 7 --content jingle-01:Jingle:30 --activate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			startDay, endDay := "", ""
			if start != "" {
				_, d, err := parseDay(start, now)
				if err != nil {
					return fmt.Errorf("invalid start date: %w", err)
				}
				startDay = d
			}
			if end != "" {
				_, d, err := parseDay(end, now)
				if err != nil {
					return fmt.Errorf("invalid end date: %w", err)
				}
				endDay = d
			}

			c, err := campaign.New(args[0], category, startDay, endDay, priority)
			if err != nil {
				return err
			}
			c.Note = note
			for _, s := range contents {
				ref, err := parseContent(s)
				if err != nil {
					return err
				}
				c.ContentRefs = append(c.ContentRefs, ref)
			}

			store, _, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Create(cmd.Context(), c); err != nil {
				return err
			}
			if activate {
				if c, err = store.ToggleStatus(cmd.Context(), c.ID); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintf(a.out, "Created campaign %s %s (%s)\n", formatHeader(c.DisplayName()), formatMuted(shortID(c.ID)), formatStatus(c.Status))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date (default today)")
	cmd.Flags().StringVar(&end, "end", "", "End date, inclusive (default start date)")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&note, "note", "", "Free-form note")
	cmd.Flags().IntVarP(&priority, "priority", "p", campaign.DefaultPriority, "Priority 1-9, higher plays first")
	cmd.Flags().StringArrayVar(&contents, "content", nil, "Content reference id[:title[:seconds]]")
	cmd.Flags().BoolVar(&activate, "activate", false, "Activate the campaign right away")

	return cmd
}

func (a *App) campaignListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List campaigns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			var filter *campaign.Status
			if status != "" {
				st, err := campaign.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = &st
			}

			campaigns, err := a.repo.ListCampaigns(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("fetching campaigns: %w", err)
			}
			if len(campaigns) == 0 {
				_, _ = fmt.Fprintln(a.out, formatMuted("No campaigns."))
				return nil
			}
			printCampaignList(a.out, campaigns, week.DateList(a.now()), termWidth())
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only list campaigns with this status")
	return cmd
}

func printCampaignList(w io.Writer, campaigns []*campaign.Campaign, dates []string, width int) {
	nameWidth := max(width-62, 12)
	_, _ = fmt.Fprintf(w, "%s\n", formatHeader(fmt.Sprintf("%-8s  %-*s  %-9s  %-3s  %-23s  %s",
		"ID", nameWidth, "NAME", "STATUS", "PRI", "DATES", "THIS WEEK")))
	for _, c := range campaigns {
		plays := grid.ScheduledSlotsForCampaign(c.ScheduleGrid, dates).Total()
		_, _ = fmt.Fprintf(w, "%-8s  %-*s  %s  %s  %s  %d\n",
			shortID(c.ID),
			nameWidth, truncate(c.DisplayName(), nameWidth),
			formatStatus(c.Status)+strings.Repeat(" ", max(9-len(c.Status), 0)),
			formatPriority(c.Priority)+" ",
			dateutil.FormatDate(c.StartDate)+" - "+dateutil.FormatDate(c.EndDate),
			plays,
		)
	}
}

func (a *App) campaignShowCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a campaign and its slots for one week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _, err := parseDay(day, a.now())
			if err != nil {
				return err
			}
			store, _, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveID(store, args[0])
			if err != nil {
				return err
			}
			c, err := store.Campaign(id)
			if err != nil {
				return err
			}
			printCampaign(a.out, c, week.Dates(date))
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "week", "w", "", "Any day of the week to show (default this week)")
	return cmd
}

func printCampaign(w io.Writer, c *campaign.Campaign, dates [grid.DaysPerWeek]string) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("%s %s\n", formatHeader(c.DisplayName()), formatPriority(c.Priority))
	p("  id:       %s\n", c.ID)
	p("  status:   %s\n", formatStatus(c.Status))
	p("  dates:    %s to %s\n", dateutil.FormatDate(c.StartDate), dateutil.FormatDate(c.EndDate))
	if c.Category != "" {
		p("  category: %s\n", c.Category)
	}
	if c.Note != "" {
		p("  note:     %s\n", c.Note)
	}

	if len(c.ContentRefs) > 0 {
		p("\n%s (%s)\n", formatHeader("Content"), formatDuration(c.TotalDurationSeconds()))
		for i, ref := range c.ContentRefs {
			p("  %d. %s %s %s\n", i+1, ref.ContentID, ref.Title, formatMuted(formatDuration(ref.DurationSeconds)))
		}
	}

	p("\n%s %s\n", formatHeader("Week of"), dates[0])
	bounds := week.DayBounds(c, dates)
	for i, d := range dates {
		b := bounds[i]
		if !b.Editable() {
			p("  %s  %s\n", d, formatMuted("outside campaign"))
			continue
		}
		var parts []string
		for _, s := range c.ScheduleGrid.InDates([]string{d}).Sorted() {
			parts = append(parts, fmt.Sprintf("%s×%d", grid.SlotTime(s.Index), s.PlayCount))
		}
		if len(parts) == 0 {
			p("  %s  %s\n", d, formatMuted("-"))
			continue
		}
		p("  %s  %s\n", d, strings.Join(parts, " "))
	}
}

func (a *App) campaignToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate or pause a campaign",
		Long: `Activate a draft or paused campaign, or pause an active one.

Pausing removes the campaign's slots that have not aired yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCampaign(cmd.Context(), args[0], func(store *editstate.Store, id string) error {
				c, err := store.ToggleStatus(cmd.Context(), id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "%s is now %s\n", formatHeader(c.DisplayName()), formatStatus(c.Status))
				return nil
			})
		},
	}
}

func (a *App) campaignCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <id>",
		Short: "Copy a campaign into a new draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCampaign(cmd.Context(), args[0], func(store *editstate.Store, id string) error {
				c, err := store.Clone(cmd.Context(), id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "Created %s %s\n", formatHeader(c.DisplayName()), formatMuted(shortID(c.ID)))
				return nil
			})
		},
	}
}

func (a *App) campaignDeleteCmd() *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a campaign",
		Long: `Delete a campaign. Slots that have not aired yet are removed first.

By default the campaign is kept with status deleted; --hard removes it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCampaign(cmd.Context(), args[0], func(store *editstate.Store, id string) error {
				c, err := store.Campaign(id)
				if err != nil {
					return err
				}
				if err := store.Delete(cmd.Context(), id, hard); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "Deleted %s\n", formatHeader(c.DisplayName()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Remove the campaign permanently")
	return cmd
}

// withCampaign opens a session and resolves ref to a campaign id.
func (a *App) withCampaign(ctx context.Context, ref string, fn func(*editstate.Store, string) error) error {
	store, _, err := a.session(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(store, ref)
	if err != nil {
		return err
	}
	return fn(store, id)
}

// resolveID matches a full id or a unique id prefix.
func resolveID(store *editstate.Store, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", campaign.ErrCampaignNotFound
	}

	var matches []string
	for _, c := range store.Campaigns() {
		if c.ID == ref {
			return c.ID, nil
		}
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", campaign.ErrCampaignNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d campaigns", errAmbiguousID, ref, len(matches))
	}
}
