package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fittrack/internal/config"
)

func (rt *runtime) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store an API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := rt.readPassword("Password: ")
			if err != nil {
				return err
			}
			s, err := rt.remote().Login(cmd.Context(), args[0], password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := config.SaveCredentials(rt.v, s.Token, s.UserID, s.Username); err != nil {
				return err
			}
			rt.cfg.Token, rt.cfg.UserID, rt.cfg.Username = s.Token, s.UserID, s.Username
			return rt.emit(s, func() error {
				rt.printf("Logged in as %s (token valid until %s)\n", s.Username, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
				return nil
			})
		},
	}
}

func (rt *runtime) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveCredentials(rt.v, "", "", ""); err != nil {
				return err
			}
			rt.printf("Logged out\n")
			return nil
		},
	}
}

func (rt *runtime) registerCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := rt.readPassword("Choose a password: ")
			if err != nil {
				return err
			}
			u, err := rt.remote().Register(cmd.Context(), args[0], password, name)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			return rt.emit(u, func() error {
				rt.printf("Registered %s. Run 'fittrack login %s' to sign in.\n", u.Username, u.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name for your profile")
	return cmd
}
