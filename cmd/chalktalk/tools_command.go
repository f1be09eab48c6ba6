package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chalktalk/internal/deps"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Check availability of required external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.PipelineRequirements(cfg))
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := "ok"
				detail := status.Path
				if !status.Available {
					state = "missing"
					if colorize {
						state = ansiRed + state + ansiReset
					}
					detail = status.InstallHint
					missing++
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Command", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			if missing > 0 {
				return fmt.Errorf("%d required tool(s) missing", missing)
			}
			return nil
		},
	}
}

func describeMissingTools(statuses []deps.Status) string {
	var missing []string
	for _, status := range statuses {
		if status.Available {
			continue
		}
		entry := status.Command
		if status.InstallHint != "" {
			entry += " (" + status.InstallHint + ")"
		}
		missing = append(missing, entry)
	}
	return strings.Join(missing, ", ")
}
