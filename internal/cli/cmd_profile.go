package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"fittrack/internal/domain"
)

var errNothingToUpdate = errors.New("nothing to update; pass --name, --avatar or --height")

func (rt *runtime) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile and training stats",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := rt.authed()
			if err != nil {
				return err
			}
			p, err := api.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return rt.emit(p, func() error { return rt.printProfile(p) })
		},
	}

	var (
		name, avatar string
		height       float64
	)
	update := &cobra.Command{
		Use:   "update",
		Short: "Change name, avatar or height",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var u domain.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				u.FullName = &name
			}
			if flags.Changed("avatar") {
				u.AvatarURL = &avatar
			}
			if flags.Changed("height") {
				u.HeightCM = &height
			}
			if u == (domain.ProfileUpdate{}) {
				return errNothingToUpdate
			}
			api, err := rt.authed()
			if err != nil {
				return err
			}
			p, err := api.UpdateProfile(cmd.Context(), u)
			if err != nil {
				return err
			}
			return rt.emit(p, func() error { return rt.printProfile(p) })
		},
	}
	update.Flags().StringVar(&name, "name", "", "full name")
	update.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	update.Flags().Float64Var(&height, "height", 0, "height in cm")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show workouts completed, streak and level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := rt.authed()
			if err != nil {
				return err
			}
			s, err := api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return rt.emit(s, func() error {
				rt.printf("level:    %d\n", s.Level)
				rt.printf("workouts: %d\n", s.Workouts)
				rt.printf("streak:   %d days\n", s.Streak)
				rt.printf("active:   %d days\n", s.Days)
				rt.printf("hours:    %s\n", formatFloat(s.Hours))
				return nil
			})
		},
	}

	cmd.AddCommand(show, update, stats)
	return cmd
}

func (rt *runtime) printProfile(p domain.Profile) error {
	rt.printf("email:  %s\n", p.Email)
	rt.printf("name:   %s\n", p.FullName)
	if p.HeightCM > 0 {
		rt.printf("height: %s cm\n", formatFloat(p.HeightCM))
	}
	if p.AvatarURL != "" {
		rt.printf("avatar: %s\n", p.AvatarURL)
	}
	return nil
}
