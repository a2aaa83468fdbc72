package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"klondike/internal/app"
	"klondike/internal/domain"
)

// newDailyCommand creates the "daily" subcommand for the shared daily
// challenge deal.
func newDailyCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show the daily challenge deal and verify claim tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var de dailyEnv
			if err := parseEnv(&de); err != nil {
				return err
			}
			secret, err := cmd.Flags().GetString("secret")
			if err != nil {
				return err
			}
			if secret == "" {
				secret = de.Secret
			}

			svc := app.NewDailyService(secret, app.DailyIssuer)

			day, err := cmd.Flags().GetString("day")
			if err != nil {
				return err
			}
			if day == "" {
				day = svc.Today()
			}
			seed, err := svc.Seed(day)
			if err != nil {
				return err
			}
			fmt.Printf("day: %s\n", day)
			fmt.Printf("seed: %d\n", seed)

			if show, _ := cmd.Flags().GetBool("show"); show {
				state, err := domain.NewGame(domain.NewSeededShuffler(seed))
				if err != nil {
					return err
				}
				printLayout(state, false)
			}

			token, err := cmd.Flags().GetString("verify")
			if err != nil {
				return err
			}
			if token == "" {
				return nil
			}
			if secret == "" {
				return fmt.Errorf("a signing secret is required to verify tokens (--secret or KLONDIKE_DAILY_SECRET)")
			}
			result, err := svc.VerifyToken(token)
			if err != nil {
				return err
			}
			fmt.Printf("token: user=%s day=%s moves=%d\n", result.UserID, result.Day, result.Moves)
			return nil
		},
	}

	cmd.Flags().String("day", "", "Challenge day (YYYY-MM-DD); defaults to today")
	cmd.Flags().Bool("show", false, "Print the day's layout")
	cmd.Flags().String("verify", "", "Verify a challenge claim token and print its claims")
	cmd.Flags().String("secret", "", "Signing secret for token verification")

	return cmd
}
