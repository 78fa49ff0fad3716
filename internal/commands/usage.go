package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moasq/nanogen/internal/prompts"
	"github.com/moasq/nanogen/internal/storage"
	"github.com/moasq/nanogen/internal/terminal"
)

var (
	usageDays  int
	usageReset bool
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage history",
	Long:  "Display session and daily token usage and request counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		usageStore := current.svc.UsageStore()
		if usageReset {
			usageStore.Reset()
			terminal.Success("Session usage reset")
			return nil
		}

		printSessionUsage(usageStore.Current())

		history := usageStore.History(usageDays)
		if len(history) == 0 {
			fmt.Println()
			terminal.Info("No daily usage history yet.")
			return nil
		}

		fmt.Println()
		terminal.Header("Daily History")

		fmt.Printf("  %-12s %10s %10s %8s %8s\n", "Date", "Prompt", "Output", "Reqs", "Failed")
		fmt.Printf("  %s\n", strings.Repeat("-", 52))

		var totalPrompt, totalOutput, totalReqs, totalFailed int
		for _, day := range history {
			fmt.Printf("  %-12s %10s %10s %8d %8d\n",
				day.Date,
				storage.FormatTokenCount(day.PromptTokens),
				storage.FormatTokenCount(day.OutputTokens),
				day.Requests,
				day.Failures,
			)
			totalPrompt += day.PromptTokens
			totalOutput += day.OutputTokens
			totalReqs += day.Requests
			totalFailed += day.Failures
		}

		fmt.Printf("  %s\n", strings.Repeat("-", 52))
		fmt.Printf("  %-12s %10s %10s %8d %8d\n",
			"Total",
			storage.FormatTokenCount(totalPrompt),
			storage.FormatTokenCount(totalOutput),
			totalReqs,
			totalFailed,
		)
		return nil
	},
}

func init() {
	usageCmd.Flags().IntVar(&usageDays, "days", 7, "Number of days of history to show")
	usageCmd.Flags().BoolVar(&usageReset, "reset", false, "Reset the session counters")
}

func printSessionUsage(u storage.SessionUsage) {
	terminal.Header("Session Usage")
	terminal.Divider()
	terminal.Detail("Since", u.StartedAt.Format("2006-01-02 15:04"))
	terminal.Detail("Requests", fmt.Sprintf("%d (%d failed)", u.Requests, u.Failures))
	terminal.Detail("Prompt tokens", storage.FormatTokenCount(u.PromptTokens))
	terminal.Detail("Output tokens", storage.FormatTokenCount(u.OutputTokens))
	for _, id := range prompts.All() {
		if n := u.ByTemplate[string(id)]; n > 0 {
			terminal.Detail("  "+id.Title(), fmt.Sprintf("%d requests", n))
		}
	}
}
