package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/animator"
)

// newAnimateCmd creates the 'animate' subcommand.
func newAnimateCmd() *cobra.Command {
	var (
		policy string
		input  string
	)
	cmd := &cobra.Command{
		Use:   "animate",
		Short: "Render the annual mean sea level as an animated polar chart",
		Long: `Plots one point per year on a polar chart where the angle is the year
within its decade. The radius policy is either decade-offset (each decade
sits on its own ring, shifted by the level) or min-max (levels normalised to
radii 1..5). Frames are collected into an animated GIF.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.Logger()
			if policy != "" {
				if _, err := animator.ParsePolicy(policy); err != nil {
					return err
				}
			}

			if input == "" {
				input = appInstance.Config().Animator.Input
			}
			ds, err := appInstance.Source(input).Latest(cmd.Context())
			if err != nil {
				return cleanExit(logger, err)
			}
			logger.Info("dataset loaded", zap.String("source", ds.Source), zap.Int("records", ds.Len()))

			result, err := appInstance.Animator(policy).Run(cmd.Context(), ds)
			if err != nil {
				return cleanExit(logger, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.URI)
			return nil
		},
	}
	cmd.Flags().StringVar(&policy, "policy", "", "radius policy: decade-offset or min-max (default from animator.policy)")
	cmd.Flags().StringVar(&input, "input", "", "dataset CSV (default: animator.input or newest crawl in data.dir)")
	return cmd
}
