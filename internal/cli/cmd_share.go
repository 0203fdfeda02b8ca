package cli

import (
	"github.com/spf13/cobra"
)

func (rt *runtime) shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share your last 30 days of metrics with a code",
	}

	create := &cobra.Command{
		Use:   "create [recipient-email]",
		Short: "Create a share code valid for 48 hours",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email string
			if len(args) == 1 {
				email = args[0]
			}
			api, err := rt.authed()
			if err != nil {
				return err
			}
			s, err := api.CreateShare(cmd.Context(), email)
			if err != nil {
				return err
			}
			return rt.emit(s, func() error {
				rt.printf("Share code %s (expires %s)\n", s.Code, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <code>",
		Short: "Show the metrics behind a share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := rt.authed()
			if err != nil {
				return err
			}
			s, err := api.Share(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rt.emit(s, func() error {
				from := s.SenderName
				if from == "" {
					from = s.SenderID
				}
				rt.printf("Shared by %s, expires %s\n", from, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
				return rt.table([]string{"DATE", "TYPE", "VALUE", "STATE", "ID"}, metricRows(s.Metrics))
			})
		},
	}

	imp := &cobra.Command{
		Use:   "import <code>",
		Short: "Copy a share's metrics into your log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := rt.authed()
			if err != nil {
				return err
			}
			ms, err := api.ImportShare(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rt.emit(ms, func() error {
				rt.printf("Imported %d metrics\n", len(ms))
				return nil
			})
		},
	}

	cmd.AddCommand(create, show, imp)
	return cmd
}
