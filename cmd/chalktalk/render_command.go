package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chalktalk/internal/fileutil"
	"chalktalk/internal/logging"
	"chalktalk/internal/pipeline"
)

const timeRound = 100 * time.Millisecond

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var output string
	var personalization string

	cmd := &cobra.Command{
		Use:   "render <problem statement>",
		Short: "Generate a narrated video for a problem statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Format:      cfg.Logging.Format,
				Level:       cfg.Logging.Level,
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			pipe, err := pipeline.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("create pipeline: %w", err)
			}

			if missing := describeMissingTools(pipe.CheckTools()); missing != "" {
				return fmt.Errorf("missing required tools: %s", missing)
			}

			result, err := pipe.Run(cmd.Context(), pipeline.Request{
				Problem:         strings.Join(args, " "),
				Personalization: personalization,
			})
			if err != nil {
				return err
			}
			defer func() {
				_ = result.Job.Cleanup()
			}()

			dest := strings.TrimSpace(output)
			if dest == "" {
				dest = "lesson.mp4"
			}
			if err := fileutil.CopyFile(result.VideoPath, dest); err != nil {
				return fmt.Errorf("copy artifact: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d segments", dest, result.Segments)
			if result.SilentSegments > 0 {
				fmt.Fprintf(out, ", %d silent", result.SilentSegments)
			}
			fmt.Fprintf(out, ", %s)\n", result.Elapsed.Round(timeRound))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination for the finished video (default lesson.mp4)")
	cmd.Flags().StringVar(&personalization, "personalization", "", "Extra context appended to the planning prompt")
	return cmd
}
