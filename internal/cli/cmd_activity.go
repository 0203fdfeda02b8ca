package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fittrack/internal/domain"
)

func (rt *runtime) activityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities"},
		Short:   "Log push-ups, running distance, water and workout time",
	}
	cmd.AddCommand(rt.activityLogCmd(), rt.activityListCmd(), rt.activityHistoryCmd())
	return cmd
}

func (rt *runtime) activityLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <type> <value>",
		Short: "Log an activity for today (pushups, running, water, workout_duration)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseActivityKind(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%w: value %q is not a number", domain.ErrInvalidActivity, args[1])
			}
			if err := domain.ValidateActivity(kind, value); err != nil {
				return err
			}
			api, err := rt.authed()
			if err != nil {
				return err
			}
			a, err := api.LogActivity(cmd.Context(), kind, value)
			if err != nil {
				return err
			}
			return rt.emit(a, func() error {
				rt.printf("Logged %s %s %s\n", a.Kind, formatFloat(a.Value), a.Unit)
				return nil
			})
		},
	}
}

func (rt *runtime) activityListCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the activities of one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date, rt.now())
			if err != nil {
				return err
			}
			api, err := rt.authed()
			if err != nil {
				return err
			}
			as, err := api.Activities(cmd.Context(), day)
			if err != nil {
				return err
			}
			return rt.emit(as, func() error { return rt.activityTable(as) })
		},
	}
	cmd.Flags().StringVar(&date, "date", "", `day to show, e.g. 2026-10-01, "yesterday" or "last monday" (default today)`)
	return cmd
}

func (rt *runtime) activityHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <type>",
		Short: "Show the latest entries of one activity type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseActivityKind(args[0])
			if err != nil {
				return err
			}
			api, err := rt.authed()
			if err != nil {
				return err
			}
			as, err := api.ActivityHistory(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			return rt.emit(as, func() error { return rt.activityTable(as) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries (default 7)")
	return cmd
}

func (rt *runtime) activityTable(as []domain.Activity) error {
	rows := make([][]string, 0, len(as))
	for _, a := range as {
		rows = append(rows, []string{a.Date, a.CreatedAt.Local().Format("15:04"), string(a.Kind), formatFloat(a.Value) + " " + a.Unit})
	}
	return rt.table([]string{"DATE", "TIME", "TYPE", "VALUE"}, rows)
}

func (rt *runtime) summaryCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show daily progress against activity goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := rt.authed()
			if err != nil {
				return err
			}
			s, err := api.DailySummary(cmd.Context(), days)
			if err != nil {
				return err
			}
			return rt.emit(s, func() error {
				rows := make([][]string, 0, len(s.Days))
				for _, d := range s.Days {
					rows = append(rows, []string{
						d.Day,
						fmt.Sprintf("%s/%d (%d%%)", formatFloat(d.Pushups.Total), s.Goals.Pushups, d.Pushups.Percent),
						fmt.Sprintf("%s/%s km (%d%%)", formatFloat(d.Distance.Total), formatFloat(s.Goals.DistanceKm), d.Distance.Percent),
						fmt.Sprintf("%s/%d (%d%%)", formatFloat(d.Water.Total), s.Goals.WaterGlasses, d.Water.Percent),
					})
				}
				return rt.table([]string{"DAY", "PUSH-UPS", "RUNNING", "WATER"}, rows)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days ending today")
	return cmd
}
