package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fittrack/internal/domain"
)

func (rt *runtime) metricCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "metric",
		Aliases: []string{"metrics"},
		Short:   "Record and list health metrics (works offline)",
	}
	cmd.AddCommand(rt.metricAddCmd(), rt.metricListCmd(), rt.metricPendingCmd(), rt.metricHistoryCmd())
	return cmd
}

func (rt *runtime) metricAddCmd() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "add <type> <value>",
		Short: "Record a metric for today",
		Long: `Record a metric for today. Types: weight, steps, heart_rate, sleep_hours,
water_ml, height, blood_pressure (e.g. 120/80), blood_sugar.

When the server cannot be reached the entry is queued and sent by the next
'fittrack sync'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseMetricKind(args[0])
			if err != nil {
				return err
			}
			coord, err := rt.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			m, err := coord.WriteMetric(cmd.Context(), rt.cfg.UserID, kind, args[1], unit)
			if err != nil {
				return err
			}
			return rt.emit(m, func() error {
				if m.Synced {
					rt.printf("Saved %s %s %s\n", m.Kind, m.Value, m.Unit)
				} else {
					rt.printf("Saved offline %s %s %s (%d pending)\n", m.Kind, m.Value, m.Unit, len(coord.Pending(rt.cfg.UserID)))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "unit (default depends on type)")
	return cmd
}

func (rt *runtime) metricListCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List metrics from the server, or the last snapshot when offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter domain.MetricKind
			if kind != "" {
				k, err := domain.ParseMetricKind(kind)
				if err != nil {
					return err
				}
				filter = k
			}
			coord, err := rt.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			res := coord.ReadMetrics(cmd.Context(), rt.cfg.UserID)
			ms := res.Metrics
			if filter != "" {
				ms = make([]domain.Metric, 0, len(res.Metrics))
				for _, m := range res.Metrics {
					if m.Kind == filter {
						ms = append(ms, m)
					}
				}
			}
			out := struct {
				Source  string          `json:"source"`
				Metrics []domain.Metric `json:"metrics"`
			}{res.Source.String(), ms}
			return rt.emit(out, func() error {
				if err := rt.table([]string{"DATE", "TYPE", "VALUE", "STATE", "ID"}, metricRows(ms)); err != nil {
					return err
				}
				rt.printf("%s\n", rt.styles().muted.Render(fmt.Sprintf("%d entries from %s", len(ms), res.Source)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "type", "", "only show this metric type")
	return cmd
}

func (rt *runtime) metricPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List metrics waiting to be synced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := rt.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			ms := coord.Pending(rt.cfg.UserID)
			return rt.emit(ms, func() error {
				if len(ms) == 0 {
					rt.printf("Nothing pending\n")
					return nil
				}
				return rt.table([]string{"DATE", "TYPE", "VALUE", "STATE", "ID"}, metricRows(ms))
			})
		},
	}
}

func (rt *runtime) metricHistoryCmd() *cobra.Command {
	var (
		limit int
		unit  string
	)
	cmd := &cobra.Command{
		Use:   "history <type>",
		Short: "Show the latest entries of one metric, oldest first (online only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseMetricKind(args[0])
			if err != nil {
				return err
			}
			api, err := rt.authed()
			if err != nil {
				return err
			}
			ms, err := api.MetricHistory(cmd.Context(), kind, limit, unit)
			if err != nil {
				return err
			}
			return rt.emit(ms, func() error {
				rows := make([][]string, 0, len(ms))
				for _, m := range ms {
					rows = append(rows, []string{m.Date, m.Value, m.Unit})
				}
				return rt.table([]string{"DATE", "VALUE", "UNIT"}, rows)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries (default 30)")
	cmd.Flags().StringVar(&unit, "unit", "", "convert weights to kg or lb")
	return cmd
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
