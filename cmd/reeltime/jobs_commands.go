package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reeltime/internal/jobs"
	"reeltime/internal/worker"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Queue render requests and plan them in batches",
	}

	jobsCmd.AddCommand(newJobsAddCommand(ctx))
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsRunCommand(ctx))
	jobsCmd.AddCommand(newJobsRetryCommand(ctx))
	jobsCmd.AddCommand(newJobsRemoveCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))

	return jobsCmd
}

func newJobsAddCommand(ctx *commandContext) *cobra.Command {
	var (
		input requestFlags
		label string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Enqueue a planning request",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := input.build(cmd)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *jobs.Store) error {
				job, err := store.Enqueue(cmd.Context(), strings.TrimSpace(label), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s\n", job.ID)
				return nil
			})
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&label, "label", "l", "", "Human readable label for the job")
	return cmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFlags []string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *jobs.Store) error {
				list, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if jsonOut {
					if list == nil {
						list = []*jobs.Job{}
					}
					return writeJSON(cmd, list)
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No jobs")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, job := range list {
					rows = append(rows, []string{
						shortJobID(job.ID), job.Label, string(job.Status),
						seconds(job.EffectiveSeconds), itoa(job.TotalFrames), itoa(job.NoteCount),
						job.CreatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable("", []column{
					{header: "ID"}, {header: "Label"}, {header: "Status"},
					{header: "Narration", numeric: true}, {header: "Frames", numeric: true},
					{header: "Notes", numeric: true}, {header: "Created"},
				}, rows))
				return printStats(cmd, store)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Only show jobs with these statuses")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print jobs as JSON")
	return cmd
}

func printStats(cmd *cobra.Command, store *jobs.Store) error {
	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	parts := make([]string, 0, len(stats))
	for _, status := range jobs.AllStatuses() {
		if n := stats[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", status, n))
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
	return nil
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a job and its plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				job, err := store.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, planned, err := job.Result()
				if err != nil {
					return err
				}
				if jsonOut {
					payload := struct {
						*jobs.Job
						Plan any `json:"plan,omitempty"`
					}{Job: job}
					if planned {
						payload.Plan = res
					}
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				printJobHeader(out, job, colorize)
				if planned {
					fmt.Fprintln(out)
					printPlan(out, res, colorize)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the job and plan as JSON")
	return cmd
}

func printJobHeader(out io.Writer, job *jobs.Job, colorize bool) {
	fmt.Fprintln(out, sectionHeader("Job "+job.ID, colorize))
	if job.Label != "" {
		fmt.Fprintln(out, statusLine("Label", statusInfo, job.Label, colorize))
	}
	kind := statusInfo
	switch job.Status {
	case jobs.StatusPlanned:
		kind = statusOK
	case jobs.StatusRejected, jobs.StatusFailed:
		kind = statusError
	}
	fmt.Fprintln(out, statusLine("Status", kind, string(job.Status), colorize))
	fmt.Fprintln(out, statusLine("Attempts", statusInfo, itoa(job.Attempts), colorize))
	fmt.Fprintln(out, statusLine("Updated", statusInfo, job.UpdatedAt.Local().Format(time.DateTime), colorize))
	if job.ErrorMessage != "" {
		fmt.Fprintln(out, statusLine("Error", statusError, job.ErrorMessage, colorize))
	}
}

func newJobsRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Plan every pending job and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			eng, err := ctx.newEngine()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *jobs.Store) error {
				w, err := worker.New(cfg, store, eng, logger)
				if err != nil {
					return err
				}
				summary, err := w.Drain(cmd.Context())
				if errors.Is(err, worker.ErrLocked) {
					return fmt.Errorf("%w (lock %s)", err, w.LockPath())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Planned %d, rejected %d, failed %d of %d claimed jobs in %s\n",
					summary.Planned, summary.Rejected, summary.Failed, summary.Claimed,
					summary.Elapsed.Round(time.Millisecond))
				return nil
			})
		},
	}
}

func newJobsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Return failed jobs to pending (all failed jobs when no IDs are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				ids, err := resolveIDs(cmd, store, args)
				if err != nil {
					return err
				}
				n, err := store.Retry(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retrying %d job(s)\n", n)
				return nil
			})
		},
	}
}

func newJobsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				job, err := store.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if _, err := store.Remove(cmd.Context(), job.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s\n", job.ID)
				return nil
			})
		},
	}
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var finished bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				var (
					n   int64
					err error
				)
				if finished {
					n, err = store.ClearFinished(cmd.Context())
				} else {
					n, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d job(s)\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&finished, "finished", false, "Only delete planned, rejected and failed jobs")
	return cmd
}

func resolveIDs(cmd *cobra.Command, store *jobs.Store, args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		job, err := store.Lookup(cmd.Context(), arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, job.ID)
	}
	return ids, nil
}

func parseStatuses(values []string) ([]jobs.Status, error) {
	statuses := make([]jobs.Status, 0, len(values))
	for _, v := range values {
		status, ok := jobs.ParseStatus(strings.ToLower(strings.TrimSpace(v)))
		if !ok {
			return nil, fmt.Errorf("unknown status %q", v)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func shortJobID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
