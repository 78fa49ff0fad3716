package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reeflective/readline"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by ReadSecret when stdin is not a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// CommandInfo holds a slash command name and description for completion.
type CommandInfo struct {
	Name string
	Desc string
}

// LineReader reads interactive input lines with history and slash-command
// completion.
type LineReader struct {
	shell *readline.Shell
}

// NewLineReader creates a reader whose prompt is recomputed before every line.
func NewLineReader(prompt func() string, commands []CommandInfo) *LineReader {
	shell := readline.NewShell()
	shell.Prompt.Primary(prompt)
	shell.Completer = func(line []rune, cursor int) readline.Completions {
		return completeSlash(string(line[:cursor]), commands)
	}
	return &LineReader{shell: shell}
}

// ReadLine returns the next trimmed line. io.EOF means the user closed input.
func (r *LineReader) ReadLine() (string, error) {
	line, err := r.shell.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func completeSlash(prefix string, commands []CommandInfo) readline.Completions {
	matches := filterCommands(prefix, commands)
	pairs := make([]string, 0, len(matches)*2)
	for _, c := range matches {
		pairs = append(pairs, c.Name, c.Desc)
	}
	return readline.CompleteValuesDescribed(pairs...)
}

// filterCommands returns the commands whose name starts with prefix.
// Only a leading "/" word is completed.
func filterCommands(prefix string, commands []CommandInfo) []CommandInfo {
	if !strings.HasPrefix(prefix, "/") || strings.ContainsAny(prefix, " \t") {
		return nil
	}
	lower := strings.ToLower(prefix)
	var matches []CommandInfo
	for _, c := range commands {
		if strings.HasPrefix(strings.ToLower(c.Name), lower) {
			matches = append(matches, c)
		}
	}
	return matches
}

// ReadSecret prompts for a value without echoing it.
func ReadSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNotTerminal
	}
	fmt.Printf("  %s%s:%s ", Bold, label, Reset)
	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// ReadValue prompts for a single visible value, showing current as the
// default. An empty answer keeps current.
func ReadValue(r io.Reader, label, current string) (string, error) {
	if current != "" {
		fmt.Printf("  %s%s%s %s[%s]%s: ", Bold, label, Reset, Dim, current, Reset)
	} else {
		fmt.Printf("  %s%s%s: ", Bold, label, Reset)
	}
	line, err := readLine(r)
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return current, err
	}
	if line = strings.TrimSpace(line); line == "" {
		return current, nil
	}
	return line, nil
}

// readLine reads up to a newline one byte at a time so nothing past the
// line is consumed from a shared reader.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return strings.TrimRight(sb.String(), "\r"), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return sb.String(), err
		}
	}
}
