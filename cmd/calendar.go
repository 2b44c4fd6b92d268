package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jarvis-assistant/jarvis/internal/calendar"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage the local calendar",
}

func init() {
	calendarCmd.AddCommand(calendarListCmd)
	calendarCmd.AddCommand(calendarAddCmd)
	calendarCmd.AddCommand(calendarRemoveCmd)
}

func calendarStore() (*calendar.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return calendar.NewStore(cfg.CalendarPath()), nil
}

// ---- list ------------------------------------------------------------------

var (
	calListDate string
	calListDays int
)

var calendarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := calendarStore()
		if err != nil {
			return err
		}

		day := time.Now()
		if calListDate != "" {
			if day, err = calendar.ParseTime(calListDate, time.Local); err != nil {
				return err
			}
		}
		from, _ := calendar.DayBounds(day)
		days := calListDays
		if days < 1 {
			days = 1
		}
		to := from.AddDate(0, 0, days)

		events, err := store.List(from, to)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No events.")
			return nil
		}
		fmt.Printf("%-10s %-17s %-6s %-28s %s\n", "ID", "Start", "End", "Title", "Location")
		fmt.Println(strings.Repeat("-", 80))
		for _, e := range events {
			fmt.Printf("%-10s %-17s %-6s %-28s %s\n",
				e.ID, e.Start.Format("2006-01-02 15:04"), e.End.Format("15:04"), truncStr(e.Title, 27), e.Location)
		}
		return nil
	},
}

func init() {
	calendarListCmd.Flags().StringVarP(&calListDate, "date", "d", "", "First day to list (YYYY-MM-DD, default today)")
	calendarListCmd.Flags().IntVarP(&calListDays, "days", "n", 1, "Number of days to list")
}

// ---- add -------------------------------------------------------------------

var (
	calAddTitle    string
	calAddStart    string
	calAddEnd      string
	calAddLocation string
	calAddDesc     string
)

var calendarAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an event",
	RunE: func(_ *cobra.Command, _ []string) error {
		start, err := calendar.ParseTime(calAddStart, time.Local)
		if err != nil {
			return errors.Wrapf(err, "invalid --start %q", calAddStart)
		}
		ev := calendar.Event{
			Title:       calAddTitle,
			Start:       start,
			Location:    calAddLocation,
			Description: calAddDesc,
		}
		if calAddEnd != "" {
			if ev.End, err = calendar.ParseTime(calAddEnd, time.Local); err != nil {
				return errors.Wrapf(err, "invalid --end %q", calAddEnd)
			}
		}

		store, err := calendarStore()
		if err != nil {
			return err
		}
		added, err := store.Add(ev)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added '%s' on %s (%s)\n", added.Title, added.Start.Format("Mon 2006-01-02 15:04"), added.ID)
		return nil
	},
}

func init() {
	calendarAddCmd.Flags().StringVarP(&calAddTitle, "title", "t", "", "Event title (required)")
	calendarAddCmd.Flags().StringVarP(&calAddStart, "start", "s", "", "Start time, e.g. 2025-06-01T14:00 (required)")
	calendarAddCmd.Flags().StringVarP(&calAddEnd, "end", "e", "", "End time (default start + 1h)")
	calendarAddCmd.Flags().StringVarP(&calAddLocation, "location", "l", "", "Location")
	calendarAddCmd.Flags().StringVar(&calAddDesc, "description", "", "Description")

	_ = calendarAddCmd.MarkFlagRequired("title")
	_ = calendarAddCmd.MarkFlagRequired("start")
}

// ---- remove ----------------------------------------------------------------

var calendarRemoveCmd = &cobra.Command{
	Use:   "remove <event-id>",
	Short: "Remove an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := calendarStore()
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			if errors.Is(err, calendar.ErrNotFound) {
				fmt.Printf("Event %s not found\n", args[0])
				return nil
			}
			return err
		}
		fmt.Printf("✓ Removed event %s\n", args[0])
		return nil
	},
}

func truncStr(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
