package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update [version]",
	Short: "Update mathstep to the latest (or a given) release",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := selfupdate.NewChecker(selfupdate.WithTimeout(2 * time.Minute))

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		input := &selfupdate.UpdateInput{CurrentVersion: version}
		if len(args) == 1 {
			input.TargetVersion = args[0]
		}

		out := cmd.OutOrStdout()
		var err error
		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			var rel *selfupdate.Release
			if rel, err = checker.Resolve(ctx, input); err == nil {
				fmt.Fprintf(out, "Would install %s from %s\n", rel.Tag, rel.ArchiveURL)
			}
		} else {
			err = checker.Update(ctx, input, func(p selfupdate.UpdateProgress) {
				fmt.Fprintln(out, p.Message)
			})
		}
		switch {
		case err == nil:
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Fprintln(out, "Cannot update a development build. Install a release build first.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Fprintln(out, "Already running the latest version.")
			return nil
		case errors.Is(err, selfupdate.ErrUnsupported):
			return fmt.Errorf("%w; download a build manually from the releases page", err)
		case os.IsPermission(err) || errors.Is(err, os.ErrPermission):
			return fmt.Errorf("%w\n\nTry running: sudo mathstep update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().Bool("dry-run", false, "Show the release that would be installed without installing it")
}
