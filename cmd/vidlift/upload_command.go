package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vidlift/internal/config"
	"vidlift/internal/ipc"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var (
		accountID     string
		videoPath     string
		audioPath     string
		thumbnailPath string
		title         string
		description   string
		tags          string
		categoryID    string
		privacy       string
		noProgress    bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a video, optionally merging a replacement audio track",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(videoPath) == "" {
				return errors.New("--video is required")
			}
			if strings.TrimSpace(title) == "" {
				return errors.New("--title is required")
			}
			if strings.TrimSpace(accountID) == "" {
				return errors.New("--account is required")
			}

			expand := func(p string) (string, error) {
				if strings.TrimSpace(p) == "" {
					return "", nil
				}
				return config.ExpandPath(p)
			}
			var err error
			if videoPath, err = expand(videoPath); err != nil {
				return err
			}
			if audioPath, err = expand(audioPath); err != nil {
				return err
			}
			if thumbnailPath, err = expand(thumbnailPath); err != nil {
				return err
			}

			req := ipc.UploadRequest{
				UserID:        ctx.userID(),
				AccountID:     accountID,
				VideoPath:     videoPath,
				AudioPath:     audioPath,
				ThumbnailPath: thumbnailPath,
				Title:         title,
				Description:   description,
				Tags:          tags,
				CategoryID:    categoryID,
				PrivacyStatus: privacy,
			}

			out := cmd.OutOrStdout()
			if noProgress {
				return ctx.withClient(func(client *ipc.Client) error {
					resp, err := client.Upload(req)
					if err != nil {
						return err
					}
					return printResult(out, resp.Result)
				})
			}
			return uploadWithProgress(ctx, out, req)
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Platform account id holding the credential")
	cmd.Flags().StringVar(&videoPath, "video", "", "Video file to upload")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Replacement audio track to merge before upload")
	cmd.Flags().StringVar(&thumbnailPath, "thumbnail", "", "Thumbnail image to attach after upload")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Video title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Video description")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar(&categoryID, "category", "", "Category id (defaults from config)")
	cmd.Flags().StringVar(&privacy, "privacy", "", "Privacy status: public, unlisted, or private")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Skip live progress output")

	return cmd
}

// uploadWithProgress runs the upload on one connection while draining the
// user's progress subscription on a second, so stage changes and percentages
// print as they happen.
func uploadWithProgress(ctx *commandContext, out io.Writer, req ipc.UploadRequest) error {
	watchClient, err := ctx.dialClient()
	if err != nil {
		return err
	}
	defer watchClient.Close()

	sub, err := watchClient.WatchSubscribe(req.UserID)
	if err != nil {
		return err
	}
	defer func() { _, _ = watchClient.WatchCancel(sub.SubscriptionID) }()

	type uploadOutcome struct {
		resp *ipc.UploadResponse
		err  error
	}
	done := make(chan uploadOutcome, 1)
	go func() {
		var outcome uploadOutcome
		outcome.err = ctx.withClient(func(client *ipc.Client) error {
			resp, callErr := client.Upload(req)
			outcome.resp = resp
			return callErr
		})
		done <- outcome
	}()

	var outcome uploadOutcome
	finished := false
	for !finished {
		select {
		case outcome = <-done:
			finished = true
		default:
			fetch, fetchErr := watchClient.WatchFetch(sub.SubscriptionID, 32)
			if fetchErr != nil {
				outcome = <-done
				finished = true
				break
			}
			for _, evt := range fetch.Events {
				printEvent(out, evt)
			}
		}
	}

	// Drain whatever the terminal stages published after the last poll.
	if fetch, fetchErr := watchClient.WatchFetch(sub.SubscriptionID, 64); fetchErr == nil {
		for _, evt := range fetch.Events {
			printEvent(out, evt)
		}
	}

	if outcome.err != nil {
		return outcome.err
	}
	return printResult(out, outcome.resp.Result)
}

func printEvent(out io.Writer, evt ipc.ProgressEvent) {
	switch evt.Kind {
	case "progress":
		fmt.Fprintf(out, "  uploading %d%%\n", evt.Percent)
	case "status":
		fmt.Fprintf(out, "» %s\n", strings.ReplaceAll(evt.Status, "_", " "))
	case "warning":
		fmt.Fprintf(out, "! %s\n", evt.Message)
	case "error":
		fmt.Fprintf(out, "✗ %s\n", evt.Message)
	case "success":
		fmt.Fprintf(out, "✓ published as %s\n", evt.VideoID)
	}
}

func printResult(out io.Writer, result ipc.JobResult) error {
	switch result.Status {
	case "completed":
		fmt.Fprintf(out, "Upload complete: video id %s (job %s)\n", result.VideoID, result.JobID)
		if result.Warning != "" {
			fmt.Fprintf(out, "Warning: %s\n", result.Warning)
		}
		return nil
	case "cancelled":
		return fmt.Errorf("upload cancelled (job %s)", result.JobID)
	default:
		if result.Error != "" {
			return fmt.Errorf("upload failed: %s (job %s)", result.Error, result.JobID)
		}
		return fmt.Errorf("upload ended in state %s (job %s)", result.Status, result.JobID)
	}
}
