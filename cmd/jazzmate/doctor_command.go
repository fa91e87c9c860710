package main

import (
	"errors"

	"github.com/spf13/cobra"

	"jazzmate/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, directories, and service reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(commandCtx(cmd), cfg)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				scr := newScreen(out)
				scr.heading("JazzMate doctor")
				for _, r := range results {
					t := toneGood
					if !r.Passed {
						t = toneBad
					}
					scr.check(r.Name, t, r.Detail)
				}
			}
			if !preflight.AllPassed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
