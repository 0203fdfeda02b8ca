package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"fittrack/internal/domain"
)

func (rt *runtime) workoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workout",
		Aliases: []string{"workouts"},
		Short:   "Browse the weekly plan and log completed workouts",
	}

	var day string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the workouts of a weekday, or the whole week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if day == "today" {
				day = rt.now().Weekday().String()
			}
			if day != "" {
				d, err := domain.ParseWeekday(day)
				if err != nil {
					return err
				}
				day = d
			}
			api, err := rt.authed()
			if err != nil {
				return err
			}
			ws, err := api.Workouts(cmd.Context(), day)
			if err != nil {
				return err
			}
			return rt.emit(ws, func() error {
				rows := make([][]string, 0, len(ws))
				for _, w := range ws {
					rows = append(rows, []string{w.Day, w.ID, w.Title, strconv.Itoa(w.Sets) + "x" + strconv.Itoa(w.Reps)})
				}
				return rt.table([]string{"DAY", "ID", "TITLE", "SETS"}, rows)
			})
		},
	}
	list.Flags().StringVar(&day, "day", "", `weekday such as "monday", or "today"`)

	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a workout as done today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := rt.authed()
			if err != nil {
				return err
			}
			l, err := api.CompleteWorkout(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rt.emit(l, func() error {
				rt.printf("Completed %s on %s\n", l.WorkoutID, l.CompletedDate)
				return nil
			})
		},
	}

	cmd.AddCommand(list, complete)
	return cmd
}
