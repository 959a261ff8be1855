package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidlift/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		search     string
		sortBy     string
		descending bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the upload history for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(ipc.HistoryRequest{
					UserID:     ctx.userID(),
					Search:     search,
					SortBy:     sortBy,
					Descending: descending,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					encoder := json.NewEncoder(out)
					encoder.SetIndent("", "  ")
					return encoder.Encode(resp.Entries)
				}

				if len(resp.Entries) == 0 {
					fmt.Fprintln(out, "No uploads recorded.")
					return nil
				}

				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					rows = append(rows, []string{
						fmt.Sprintf("%d", entry.ID),
						entry.Title,
						entry.VideoID,
						entry.AccountLabel,
						entry.Status,
						entry.UploadedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Video", "Account", "Status", "Uploaded"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by title substring")
	cmd.Flags().StringVar(&sortBy, "sort", "date", "Sort by 'date' or 'title'")
	cmd.Flags().BoolVar(&descending, "desc", false, "Sort in descending order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")

	return cmd
}
