package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"reeltime/internal/engine"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var (
		input    requestFlags
		jsonOut  bool
		atFrames []int
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the timeline, captions and audio for one narration",
		Example: `  reeltime plan --estimate 40 --transcript narration.json
  reeltime plan --estimate 30 --script-file script.txt --at 240 --at 1300`,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if jsonOut {
				return writeJSON(cmd, res)
			}
			out := cmd.OutOrStdout()
			printPlan(out, res, shouldColorize(out))
			for _, frame := range atFrames {
				printFrame(out, res, frame)
			}
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full plan as JSON")
	cmd.Flags().IntSliceVar(&atFrames, "at", nil, "Describe the plan at these frames")
	return cmd
}

func printPlan(out io.Writer, res engine.Result, colorize bool) {
	d := res.Duration
	tl := res.Timeline

	fmt.Fprintln(out, sectionHeader("Narration", colorize))
	fmt.Fprintln(out, statusLine("Effective", statusOK,
		fmt.Sprintf("%s from %s", seconds(d.EffectiveSeconds), d.Source), colorize))
	fmt.Fprintln(out, statusLine("Estimated", statusInfo, seconds(d.EstimatedSeconds), colorize))
	if d.TranscribedEnd > 0 {
		fmt.Fprintln(out, statusLine("Transcribed end", statusInfo, seconds(d.TranscribedEnd), colorize))
	}
	fmt.Fprintln(out, statusLine("Timeline", statusInfo,
		fmt.Sprintf("%d frames (%s) at %d fps", tl.TotalFrames, seconds(tl.DurationSeconds()), tl.FPS), colorize))
	fmt.Fprintln(out, statusLine("Timed captions", statusInfo, yesNo(res.Captions.Timed), colorize))
	for _, note := range res.Notes {
		fmt.Fprintln(out, statusLine(string(note.Kind), noteStatus(note.Kind), note.Message, colorize))
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(tl.Scenes)+len(tl.Tracks))
	for _, s := range tl.Scenes {
		rows = append(rows, []string{string(s.Name), "scene", itoa(s.StartFrame), itoa(s.EndFrame()), itoa(s.DurationFrames)})
	}
	for _, s := range tl.Tracks {
		rows = append(rows, []string{string(s.Name), "audio", itoa(s.StartFrame), itoa(s.EndFrame()), itoa(s.DurationFrames)})
	}
	fmt.Fprintln(out, renderTable("Sequences", []column{
		{header: "Name"}, {header: "Kind"}, {header: "Start", numeric: true},
		{header: "End", numeric: true}, {header: "Frames", numeric: true},
	}, rows))

	if len(res.Captions.Windows) == 0 {
		fmt.Fprintln(out, "No caption blocks.")
		return
	}
	rows = rows[:0]
	for _, w := range res.Captions.Windows {
		rule := ""
		if w.Index >= 0 && w.Index < len(res.Blocks) {
			rule = res.Blocks[w.Index].Rule
		}
		rows = append(rows, []string{
			itoa(w.Index), string(w.Weight), rule,
			itoa(w.StartFrame), itoa(w.EndFrame), strings.Join(w.Lines, " / "),
		})
	}
	fmt.Fprintln(out, renderTable("Captions", []column{
		{header: "#", numeric: true}, {header: "Weight"}, {header: "Rule"},
		{header: "Start", numeric: true}, {header: "End", numeric: true}, {header: "Text"},
	}, rows))
}

func printFrame(out io.Writer, res engine.Result, frame int) {
	names := res.Timeline.ScenesAt(frame)
	scenes := make([]string, len(names))
	for i, n := range names {
		scenes[i] = string(n)
	}
	caption := "none"
	if c := res.CaptionAt(frame); c.Index >= 0 {
		caption = fmt.Sprintf("#%d opacity %s", c.Index, gain(c.Opacity))
	}
	fmt.Fprintf(out, "frame %d: scenes=[%s] caption=%s music=%s narration=%s\n",
		frame, strings.Join(scenes, ","), caption,
		gain(res.Music()(frame)), gain(res.Narration()(frame)))
}

func noteStatus(kind engine.NoteKind) statusKind {
	switch kind {
	case engine.NoteDurationDiscrepancy, engine.NoteDurationCapped, engine.NoteBlocksStretched, engine.NoteBlocksShifted:
		return statusWarn
	default:
		return statusInfo
	}
}
