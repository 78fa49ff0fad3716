package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moasq/nanogen/internal/gemini"
	"github.com/moasq/nanogen/internal/prompts"
	"github.com/moasq/nanogen/internal/secrets"
	"github.com/moasq/nanogen/internal/service"
	"github.com/moasq/nanogen/internal/storage"
	"github.com/moasq/nanogen/internal/terminal"
	"github.com/moasq/nanogen/internal/update"
	"github.com/moasq/nanogen/internal/view"
)

var slashCommands = []terminal.CommandInfo{
	{Name: "/view", Desc: "Switch view (plan, marketing, ui)"},
	{Name: "/set", Desc: "Set a form field: /set <field> <value>"},
	{Name: "/form", Desc: "Fill in every field of the current view"},
	{Name: "/generate", Desc: "Send the current view's prompt"},
	{Name: "/clear", Desc: "Clear the current view's result"},
	{Name: "/key", Desc: "Enter and save the API key (/key clear deletes it)"},
	{Name: "/model", Desc: "Show or switch the Gemini model"},
	{Name: "/usage", Desc: "Show token usage"},
	{Name: "/help", Desc: "Show this help"},
	{Name: "/quit", Desc: "Exit session"},
}

var modelOptions = []terminal.PickerOption{
	{Label: "gemini-2.5-flash", Desc: "Fast, good for most prompts (default)"},
	{Label: "gemini-2.5-pro", Desc: "Most capable, slower"},
	{Label: "gemini-2.5-flash-lite", Desc: "Fastest, lightweight prompts"},
}

// session is one interactive run.
type session struct {
	app      *app
	svc      *service.Service
	renderer *terminal.Renderer
	spinner  *terminal.Spinner
	in       io.Reader

	// generating is set while a call is in flight. Calls are never
	// cancelled; Ctrl+C during one only warns.
	generating atomic.Bool

	// readSecret reads the API key without echo.
	readSecret func(label string) (string, error)
}

func newSession(a *app, out io.Writer, styled bool) *session {
	return &session{
		app:      a,
		svc:      a.svc,
		renderer: terminal.NewRenderer(out, terminalWidth(), styled),
		spinner:  terminal.NewSpinnerTo(out, "Generating..."),
		in:       os.Stdin,

		readSecret: terminal.ReadSecret,
	}
}

func runInteractive(cmd *cobra.Command, a *app) error {
	terminal.Banner(Version)

	// Check for updates in the background (non-blocking)
	updateCh := make(chan *update.Result, 1)
	go func() {
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()
		updateCh <- update.Check(ctx, "moasq", "nanogen", Version)
	}()

	s := newSession(a, os.Stdout, isTerminalWriter(os.Stdout))
	deck := s.svc.Store().Snapshot()
	terminal.Status(terminal.StatusOpts{
		Model:      s.svc.CurrentModel(),
		KeySet:     s.svc.Configured(),
		KeySource:  a.keySource(),
		ActiveView: deck.Active.Title(),
	})
	select {
	case res := <-updateCh:
		if res.NeedsUpdate() {
			terminal.Warning(fmt.Sprintf("Update available: v%s → v%s", res.Current, res.Latest))
			fmt.Println()
		}
	case <-time.After(3 * time.Second):
	}

	fmt.Printf("  %sType /help for commands. Press Enter on an empty form field to keep its value.%s\n\n", terminal.Dim, terminal.Reset)

	unsubscribe := s.svc.Store().Subscribe(s.onChange)
	defer unsubscribe()

	// Ctrl+C exits when idle.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if !s.interrupt() {
				continue
			}
			fmt.Println()
			terminal.Info("Goodbye!")
			SyncLogger()
			os.Exit(0)
		}
	}()

	reader := terminal.NewLineReader(s.prompt, slashCommands)
	for {
		line, err := reader.ReadLine()
		if err != nil {
			terminal.Info("Goodbye!")
			return nil
		}
		if line == "" {
			continue
		}
		if quit := s.handle(cmd.Context(), line); quit {
			terminal.Info("Goodbye!")
			return nil
		}
	}
}

func (s *session) prompt() string {
	tab := s.svc.Store().Snapshot().Active
	return fmt.Sprintf("%s%s%s> ", terminal.Bold, tab, terminal.Reset)
}

// onChange keeps the spinner in step with the active tab's loading flag.
func (s *session) onChange(d view.Deck) {
	if d.Current().Loading {
		s.spinner.Update(fmt.Sprintf("Generating %s...", strings.ToLower(d.Active.Title())))
		s.spinner.Start()
		return
	}
	s.spinner.Stop()
}

// handle processes one input line. It returns true when the session should end.
func (s *session) handle(ctx context.Context, input string) bool {
	if strings.HasPrefix(input, "/") {
		return s.handleSlash(ctx, input)
	}
	if input == "quit" || input == "exit" {
		return true
	}
	s.handleText(ctx, input)
	return false
}

// handleText treats free text as the instruction on the ui view, and as the
// next empty field on the form views.
func (s *session) handleText(ctx context.Context, input string) {
	tab := s.svc.Store().Snapshot().Active
	if tab == prompts.UI {
		if err := s.svc.SetField(tab, prompts.FieldInstruction, input); err != nil {
			terminal.Error(err.Error())
			return
		}
		s.generate(ctx, tab)
		return
	}

	field, ok := nextEmptyField(tab, s.svc.Store().Snapshot().Tab(tab).Fields)
	if !ok {
		terminal.Warning("Every field is filled. Use /set <field> <value> to change one, or /generate.")
		fmt.Println()
		return
	}
	if err := s.svc.SetField(tab, field.Name, input); err != nil {
		terminal.Error(err.Error())
		return
	}
	terminal.Success(fmt.Sprintf("%s set to %q", field.Label, input))
	if next, ok := nextEmptyField(tab, s.svc.Store().Snapshot().Tab(tab).Fields); ok {
		terminal.Info(fmt.Sprintf("Next: %s", next.Label))
	} else {
		terminal.Info("Form complete. Run /generate.")
	}
	fmt.Println()
}

// nextEmptyField returns the first field of tab without a value.
func nextEmptyField(tab view.Tab, values map[string]string) (prompts.Field, bool) {
	for _, f := range prompts.Fields(tab) {
		if strings.TrimSpace(values[f.Name]) == "" {
			return f, true
		}
	}
	return prompts.Field{}, false
}

// handleSlashCommand processes slash commands. Returns true if the session should end.
func (s *session) handleSlash(ctx context.Context, input string) bool {
	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	tab := s.svc.Store().Snapshot().Active

	switch command {
	case "/quit", "/exit":
		return true

	case "/help":
		printHelp()

	case "/view":
		s.switchView(arg)

	case "/set":
		name, value, found := strings.Cut(arg, " ")
		if !found || name == "" {
			terminal.Warning("Usage: /set <field> <value>")
			printForm(tab, s.svc.Store().Snapshot().Tab(tab))
			break
		}
		if err := s.svc.SetField(tab, strings.ToLower(name), strings.TrimSpace(value)); err != nil {
			terminal.Error(err.Error())
			break
		}
		terminal.Success(fmt.Sprintf("%s set", name))
		fmt.Println()

	case "/form":
		s.fillForm(tab)

	case "/generate":
		s.generate(ctx, tab)

	case "/clear":
		s.svc.Clear(tab)
		terminal.Success(fmt.Sprintf("%s result cleared", tab.Title()))
		fmt.Println()

	case "/key":
		if strings.EqualFold(arg, "clear") {
			if err := s.svc.ClearCredential(); err != nil {
				terminal.Error(err.Error())
			} else {
				terminal.Success("API key deleted")
			}
			fmt.Println()
			break
		}
		s.enterKey()

	case "/model":
		if arg == "" {
			arg = terminal.Pick("Models", modelOptions, s.svc.CurrentModel())
		}
		if arg != "" {
			s.svc.SetModel(arg)
			terminal.Success(fmt.Sprintf("Model set to %s", arg))
		} else {
			terminal.Detail("Model", s.svc.CurrentModel())
		}
		fmt.Println()

	case "/usage":
		fmt.Println()
		printSessionUsage(s.svc.Usage())
		fmt.Println()

	default:
		terminal.Warning(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", command))
		fmt.Println()
	}
	return false
}

func (s *session) switchView(arg string) {
	var tab view.Tab
	if arg != "" {
		id, ok := prompts.Parse(strings.ToLower(arg))
		if !ok {
			terminal.Error(fmt.Sprintf("Unknown view: %s (want plan, marketing or ui)", arg))
			fmt.Println()
			return
		}
		tab = id
	} else {
		var opts []terminal.PickerOption
		for _, id := range prompts.All() {
			opts = append(opts, terminal.PickerOption{Label: string(id), Desc: id.Title()})
		}
		picked := terminal.Pick("Views", opts, string(s.svc.Store().Snapshot().Active))
		if picked == "" {
			return
		}
		tab = view.Tab(picked)
	}

	if err := s.svc.SwitchTab(tab); err != nil {
		terminal.Error(err.Error())
		return
	}
	ts := s.svc.Store().Snapshot().Tab(tab)
	printForm(tab, ts)
	if ts.Panel.Kind != view.PanelEmpty {
		s.renderer.RenderTab(ts)
		fmt.Println()
	}
}

func (s *session) fillForm(tab view.Tab) {
	values := s.svc.Store().Snapshot().Tab(tab).Fields
	terminal.Header(tab.Title())
	for _, f := range prompts.Fields(tab) {
		v, err := terminal.ReadValue(s.in, f.Label, values[f.Name])
		if err != nil {
			fmt.Println()
			return
		}
		if err := s.svc.SetField(tab, f.Name, v); err != nil {
			terminal.Error(err.Error())
			return
		}
	}
	fmt.Println()
	terminal.Info("Form saved. Run /generate.")
	fmt.Println()
}

// interrupt handles Ctrl+C. It reports whether the session should exit,
// which is only the case when no call is in flight.
func (s *session) interrupt() bool {
	if s.generating.Load() {
		fmt.Println()
		terminal.Warning("A generation is in flight and cannot be cancelled. Its result will be shown when it arrives.")
		return false
	}
	return true
}

func (s *session) generate(ctx context.Context, tab view.Tab) {
	s.generating.Store(true)
	defer s.generating.Store(false)

	before := s.svc.Usage()
	ts, err := s.svc.Generate(ctx, tab)
	s.spinner.Stop()

	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		s.showNotice()
		return
	case errors.Is(err, service.ErrBusy):
		terminal.Warning(err.Error())
		fmt.Println()
		return
	case err != nil && !errors.Is(err, gemini.ErrGenerationFailed):
		terminal.Error(err.Error())
		fmt.Println()
		return
	}

	fmt.Println()
	s.renderer.RenderTab(ts)
	if err == nil {
		after := s.svc.Usage()
		if delta := after.TotalTokens() - before.TotalTokens(); delta > 0 {
			fmt.Printf("  %s%s tokens%s\n", terminal.Dim, storage.FormatTokenCount(delta), terminal.Reset)
		}
	}
	fmt.Println()
}

// showNotice shows the not-configured notice and offers to enter a key.
func (s *session) showNotice() {
	deck := s.svc.Store().Snapshot()
	if deck.Notice != "" {
		terminal.Warning(deck.Notice)
	}
	s.enterKey()
	s.svc.Store().Dispatch(view.DismissNotice{})
}

func (s *session) enterKey() {
	key, err := s.readSecret("Gemini API key (Enter to skip)")
	if errors.Is(err, terminal.ErrNotTerminal) {
		key, err = terminal.ReadValue(s.in, "Gemini API key (Enter to skip)", "")
	}
	if err != nil || key == "" {
		fmt.Println()
		return
	}
	if err := s.svc.SaveCredential(key); err != nil {
		terminal.Error(err.Error())
		fmt.Println()
		return
	}
	terminal.Success(fmt.Sprintf("API key %s saved to %s", secrets.Mask(key), secrets.Describe(s.app.secrets)))
	fmt.Println()
}

func printForm(tab view.Tab, ts view.TabState) {
	terminal.Header(tab.Title())
	for _, f := range prompts.Fields(tab) {
		v := ts.Fields[f.Name]
		if v == "" {
			v = terminal.Dim + "(empty)" + terminal.Reset
		}
		terminal.Detail(fmt.Sprintf("%s [%s]", f.Label, f.Name), v)
	}
	fmt.Println()
}

func printHelp() {
	fmt.Println()
	terminal.Header("Commands")
	for _, c := range slashCommands {
		fmt.Printf("  %s%-10s%s %s%s%s\n", terminal.Bold, c.Name, terminal.Reset, terminal.Dim, c.Desc, terminal.Reset)
	}
	fmt.Println()
	fmt.Printf("  %sOn the ui view, type an instruction and press Enter to generate.%s\n", terminal.Dim, terminal.Reset)
	fmt.Printf("  %sOn the plan and marketing views, typed text fills the next empty field.%s\n", terminal.Dim, terminal.Reset)
	fmt.Println()
}
