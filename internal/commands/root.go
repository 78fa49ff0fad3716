package commands

import (
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "nanogen",
	Short: "Gemini prompt workbench for the terminal",
	Long: "nanogen collects prompts for three views (fitness plan, marketing copy, UI sections), " +
		"sends them to Gemini, and renders the text or the generated UI document.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(homeFlag, modelFlag, verboseFlag)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd, current)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	if current != nil && current.logger != nil {
		_ = current.logger.Sync()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Gemini model to use (default from config, gemini-2.5-flash)")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "State directory (default $NANOGEN_HOME or ~/.nanogen)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Write debug diagnostics to the log file")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(marketingCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(mcpCmd)
}

var (
	modelFlag   string
	homeFlag    string
	verboseFlag bool
)
