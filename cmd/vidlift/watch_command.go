package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vidlift/internal/ipc"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream progress events for a user's uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withClient(func(client *ipc.Client) error {
				sub, err := client.WatchSubscribe(ctx.userID())
				if err != nil {
					return err
				}
				defer func() { _, _ = client.WatchCancel(sub.SubscriptionID) }()

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Watching for upload events. Press Ctrl-C to stop.")
				for {
					if signalCtx.Err() != nil {
						return nil
					}
					fetch, err := client.WatchFetch(sub.SubscriptionID, 32)
					if err != nil {
						if signalCtx.Err() != nil {
							return nil
						}
						return err
					}
					for _, evt := range fetch.Events {
						printWatchEvent(out, evt)
					}
				}
			})
		},
	}
	return cmd
}

func printWatchEvent(out io.Writer, evt ipc.ProgressEvent) {
	prefix := fmt.Sprintf("[%s] job %s", evt.Timestamp.Local().Format("15:04:05"), evt.JobID)
	switch evt.Kind {
	case "progress":
		fmt.Fprintf(out, "%s uploading %d%%\n", prefix, evt.Percent)
	case "status":
		fmt.Fprintf(out, "%s -> %s\n", prefix, evt.Status)
	case "warning":
		fmt.Fprintf(out, "%s warning: %s\n", prefix, evt.Message)
	case "error":
		fmt.Fprintf(out, "%s error: %s\n", prefix, evt.Message)
	case "success":
		fmt.Fprintf(out, "%s published as %s\n", prefix, evt.VideoID)
	}
}
