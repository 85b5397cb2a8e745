package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"medialib/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the media store and disks are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			for _, line := range renderHeading("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderField("Name", cfg.Environment.Name))
			fmt.Fprintln(out, renderField("Protected", yesNo(cfg.IsProtectedEnvironment())))
			fmt.Fprintln(out)

			for _, line := range renderHeading("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			disks, err := ctx.disks(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, renderMarked("Disks", markFailed, err.Error(), colorize))
				return errors.New("preflight checks failed")
			}
			failed := false
			for _, result := range preflight.RunAll(cmd.Context(), cfg, disks) {
				state := markDone
				if !result.Passed {
					state = markFailed
					failed = true
				}
				fmt.Fprintln(out, renderMarked(result.Name, state, result.Detail, colorize))
			}
			if failed {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
