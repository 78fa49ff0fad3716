package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/moasq/nanogen/internal/gemini"
	"github.com/moasq/nanogen/internal/prompts"
	"github.com/moasq/nanogen/internal/terminal"
	"github.com/moasq/nanogen/internal/view"
)

var planCmd = newFormCommand(prompts.Plan, "plan", "Generate a weekly fitness plan")

var marketingCmd = newFormCommand(prompts.Marketing, "marketing", "Generate marketing copy")

var uiJSON bool

var uiCmd = &cobra.Command{
	Use:   "ui <instruction>",
	Short: "Generate a UI section document",
	Long:  "Sends the instruction to Gemini and renders the returned sections as cards. With --json the document is printed as JSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := map[string]string{prompts.FieldInstruction: strings.Join(args, " ")}
		return runOneShot(cmd, current, prompts.UI, values, uiJSON)
	},
}

func init() {
	uiCmd.Flags().BoolVar(&uiJSON, "json", false, "Print the materialized document as JSON")
}

// newFormCommand builds a one-shot command with one flag per template field.
func newFormCommand(id prompts.TemplateID, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string)
			for _, f := range prompts.Fields(id) {
				if !cmd.Flags().Changed(f.Name) {
					continue
				}
				v, err := cmd.Flags().GetString(f.Name)
				if err != nil {
					return err
				}
				values[f.Name] = v
			}
			return runOneShot(cmd, current, id, values, false)
		},
	}
	for _, f := range prompts.Fields(id) {
		cmd.Flags().String(f.Name, f.Default, f.Label)
	}
	return cmd
}

// runOneShot fills the tab form, generates once, and prints the panel.
// A response that is not a valid document still exits zero.
func runOneShot(cmd *cobra.Command, a *app, tab view.Tab, values map[string]string, asJSON bool) error {
	for name, v := range values {
		if err := a.svc.SetField(tab, name, v); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var spinner *terminal.Spinner
	if term.IsTerminal(int(os.Stderr.Fd())) {
		spinner = terminal.NewSpinnerTo(os.Stderr, fmt.Sprintf("Generating %s...", strings.ToLower(tab.Title())))
		spinner.Start()
	}
	ts, err := a.svc.Generate(cmd.Context(), tab)
	if spinner != nil {
		spinner.Stop()
	}

	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		return fmt.Errorf("%w: run `nanogen key set` or set GEMINI_API_KEY", err)
	case errors.Is(err, gemini.ErrGenerationFailed):
		fmt.Fprintln(cmd.ErrOrStderr(), view.GenerationFailedMessage)
		return err
	case err != nil:
		return err
	}

	if asJSON {
		return printJSON(out, cmd.ErrOrStderr(), ts.Panel)
	}
	terminal.NewRenderer(out, terminalWidth(), isTerminalWriter(out)).RenderTab(ts)
	return nil
}

func printJSON(out, errOut io.Writer, p view.Panel) error {
	if p.Kind != view.PanelDocument {
		fmt.Fprintln(out, p.Text)
		if p.Warning != "" {
			fmt.Fprintln(errOut, p.Warning)
		}
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(p.Document)
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return min(w, 100)
	}
	return 80
}
