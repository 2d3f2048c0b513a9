package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"slidecast/internal/queue"
)

func newQueueCommand(appCtx *appContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the conversion queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(appCtx))
	queueCmd.AddCommand(newQueueListCommand(appCtx))
	queueCmd.AddCommand(newQueueShowCommand(appCtx))
	queueCmd.AddCommand(newQueueClearCommand(appCtx))
	queueCmd.AddCommand(newQueueResetCommand(appCtx))
	queueCmd.AddCommand(newQueueRetryCommand(appCtx))
	queueCmd.AddCommand(newQueueRemoveCommand(appCtx))
	queueCmd.AddCommand(newQueueHealthSubcommand(appCtx))

	return queueCmd
}

func (a *appContext) withStore(fn func(store *queue.Store) error) error {
	cfg, err := a.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newQueueStatusCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withStore(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				out := renderTable([]tableColumn{{title: "Status"}, {title: "Count", numeric: true}}, rows)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func buildQueueStatusRows(stats map[queue.Status]int) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, status := range queue.AllStatuses() {
		count, ok := stats[status]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(status), strconv.Itoa(count)})
	}
	// Unknown statuses from older database versions still show up.
	extras := make([]string, 0)
	for status := range stats {
		if _, known := queue.ParseStatus(string(status)); !known {
			extras = append(extras, string(status))
		}
	}
	sort.Strings(extras)
	for _, status := range extras {
		rows = append(rows, []string{status, strconv.Itoa(stats[queue.Status(status)])})
	}
	return rows
}

func newQueueListCommand(appCtx *appContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(listStatuses))
			for _, raw := range listStatuses {
				status, ok := queue.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}

			return appCtx.withStore(func(store *queue.Store) error {
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						job.ID,
						job.Title,
						string(job.Status),
						fmt.Sprintf("%.0f%%", job.ProgressPercent),
						job.CreatedAt.Local().Format(time.RFC3339),
					})
				}
				out := renderTable(
					[]tableColumn{
						{title: "ID"},
						{title: "Title"},
						{title: "Status"},
						{title: "Progress", numeric: true},
						{title: "Created"},
					},
					rows,
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	return cmd
}

func newQueueShowCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <jobID>",
		Short: "Show details for one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withStore(func(store *queue.Store) error {
				job, err := store.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\n", job.ID)
				fmt.Fprintf(out, "Title:    %s\n", job.Title)
				fmt.Fprintf(out, "Deck:     %s\n", job.SourcePath)
				fmt.Fprintf(out, "Status:   %s\n", job.Status)
				fmt.Fprintf(out, "Progress: %.0f%% (%s)\n", job.ProgressPercent, job.ProgressMessage)
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:    %s\n", job.ErrorMessage)
				}
				if job.Status == queue.StatusCompleted {
					outputs, err := job.Outputs()
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Video:    %s\n", outputs.VideoPath)
					fmt.Fprintf(out, "Deck out: %s\n", outputs.DeckPath)
					if outputs.PDFPath != "" {
						fmt.Fprintf(out, "PDF:      %s\n", outputs.PDFPath)
					}
				}
				return nil
			})
		},
	}
}

func newQueueClearCommand(appCtx *appContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			return appCtx.withStore(func(store *queue.Store) error {
				var removed int64
				var err error
				switch {
				case clearCompleted:
					removed, err = store.ClearCompleted(cmd.Context())
				case clearFailed:
					removed, err = store.ClearFailed(cmd.Context())
				default:
					removed, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d jobs\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed jobs")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed jobs")
	return cmd
}

func newQueueResetCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Return in-flight jobs to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withStore(func(store *queue.Store) error {
				updated, err := store.ResetStuckProcessing(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d jobs\n", updated)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [jobID...]",
		Short: "Retry failed jobs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					updated, err := store.RetryFailed(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Retried %d failed jobs\n", updated)
					return nil
				}

				for _, id := range args {
					job, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if job == nil {
						fmt.Fprintf(out, "Job %s not found\n", id)
						continue
					}
					if job.Status != queue.StatusError {
						fmt.Fprintf(out, "Job %s is not in error state\n", id)
						continue
					}
					updated, err := store.RetryFailed(cmd.Context(), id)
					if err != nil {
						return err
					}
					if updated > 0 {
						fmt.Fprintf(out, "Job %s reset for retry\n", id)
					} else {
						fmt.Fprintf(out, "Job %s is not in error state\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <jobID>",
		Short: "Remove one job from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withStore(func(store *queue.Store) error {
				removed, err := store.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("job %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s\n", args[0])
				return nil
			})
		},
	}
}

func newQueueHealthSubcommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withStore(func(store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nPending: %d\nProcessing: %d\nFailed: %d\nCompleted: %d\n",
					health.Total,
					health.Pending,
					health.Processing,
					health.Failed,
					health.Completed,
				)
				return nil
			})
		},
	}
}
