package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reeltime/internal/audiocurve"
)

func newCurveCommand(ctx *commandContext) *cobra.Command {
	var (
		input   requestFlags
		step    int
		track   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Sample the music and narration gain curves",
		RunE: func(cmd *cobra.Command, args []string) error {
			if step <= 0 {
				return errors.New("--step must be positive")
			}
			track = strings.ToLower(strings.TrimSpace(track))
			if track != "both" && track != "music" && track != "narration" {
				return fmt.Errorf("--track must be music, narration or both, got %q", track)
			}
			req, err := input.build(cmd)
			if err != nil {
				return err
			}
			eng, err := ctx.newEngine()
			if err != nil {
				return err
			}
			res, err := eng.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}

			total := res.Timeline.TotalFrames
			music := audiocurve.Sample(res.Music(), 0, total, step)
			narration := audiocurve.Sample(res.Narration(), 0, total, step)

			if jsonOut {
				payload := map[string][]audiocurve.Point{}
				if track != "narration" {
					payload["music"] = music
				}
				if track != "music" {
					payload["narration"] = narration
				}
				return writeJSON(cmd, payload)
			}

			columns := []column{{header: "Frame", numeric: true}, {header: "Scenes"}}
			if track != "narration" {
				columns = append(columns, column{header: "Music", numeric: true})
			}
			if track != "music" {
				columns = append(columns, column{header: "Narration", numeric: true})
			}
			rows := make([][]string, 0, len(music))
			for i, p := range music {
				names := res.Timeline.ScenesAt(p.Frame)
				scenes := make([]string, len(names))
				for j, n := range names {
					scenes[j] = string(n)
				}
				row := []string{itoa(p.Frame), strings.Join(scenes, "+")}
				if track != "narration" {
					row = append(row, gain(p.Level))
				}
				if track != "music" {
					row = append(row, gain(narration[i].Level))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				fmt.Sprintf("Gain every %d frames", step), columns, rows))
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().IntVar(&step, "step", 30, "Frames between samples")
	cmd.Flags().StringVar(&track, "track", "both", "Curve to sample: music, narration or both")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print samples as JSON")
	return cmd
}
