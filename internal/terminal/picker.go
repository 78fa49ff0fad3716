package terminal

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"
)

// PickerOption represents an option in the interactive picker.
type PickerOption struct {
	Label string
	Desc  string
}

// picker is the cursor state of one Pick call.
type picker struct {
	options  []PickerOption
	selected int
	offset   int
	visible  int
}

func newPicker(options []PickerOption, current string, termHeight int) *picker {
	p := &picker{options: options, visible: len(options)}
	for i, opt := range options {
		if opt.Label == current {
			p.selected = i
			break
		}
	}
	if termHeight > 0 && p.visible > termHeight-4 {
		p.visible = termHeight - 4
	}
	if p.visible < 3 {
		p.visible = min(3, len(options))
	}
	p.scroll()
	return p
}

func (p *picker) move(delta int) {
	n := len(p.options)
	p.selected = ((p.selected+delta)%n + n) % n
	p.scroll()
}

func (p *picker) scroll() {
	if p.selected < p.offset {
		p.offset = p.selected
	} else if p.selected >= p.offset+p.visible {
		p.offset = p.selected - p.visible + 1
	}
}

// lines renders the visible window plus the hint line.
func (p *picker) lines() []string {
	var out []string
	end := min(p.offset+p.visible, len(p.options))
	for i := p.offset; i < end; i++ {
		opt := p.options[i]
		if i == p.selected {
			out = append(out, fmt.Sprintf("  %s%s▸%s %s%-12s%s %s%s%s", Bold, Cyan, Reset, Bold, opt.Label, Reset, Dim, opt.Desc, Reset))
		} else {
			out = append(out, fmt.Sprintf("    %-12s %s%s%s", opt.Label, Dim, opt.Desc, Reset))
		}
	}
	hint := "↑↓ navigate  Enter select  q cancel"
	if len(p.options) > p.visible {
		hint = fmt.Sprintf("↑↓ scroll (%d/%d)  Enter select  q cancel", p.selected+1, len(p.options))
	}
	return append(out, Dim+"  "+hint+Reset)
}

// Pick shows an interactive picker with arrow key navigation.
// Returns the selected option's Label, or "" if cancelled or stdin is not a terminal.
func Pick(title string, options []PickerOption, currentLabel string) string {
	if len(options) == 0 {
		return ""
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ""
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return ""
	}
	defer term.Restore(fd, oldState)

	_, height, _ := term.GetSize(fd)
	p := newPicker(options, currentLabel, height)

	rawWrite("\033[?25l")
	header := 1
	if title != "" {
		rawWrite(fmt.Sprintf("\r\n  %s%s%s\r\n", Bold, title, Reset))
		header = 2
	} else {
		rawWrite("\r\n")
	}

	drawn := 0
	draw := func() {
		if drawn > 0 {
			rawWrite(fmt.Sprintf("\033[%dA", drawn))
		}
		lines := p.lines()
		for _, l := range lines {
			rawWrite("\r\033[K" + l + "\r\n")
		}
		drawn = len(lines)
	}
	finish := func(result string) string {
		total := drawn + header
		rawWrite(fmt.Sprintf("\033[%dA", total))
		rawWrite(strings.Repeat("\r\033[K\r\n", total))
		rawWrite(fmt.Sprintf("\033[%dA\033[?25h", total))
		return result
	}

	draw()
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return finish("")
		}
		switch buf[0] {
		case 0x1b:
			seq := make([]byte, 7)
			sn := readWithTimeout(seq, 50*time.Millisecond)
			if sn == 0 {
				return finish("")
			}
			if sn >= 2 && seq[0] == '[' {
				switch seq[1] {
				case 'A':
					p.move(-1)
				case 'B':
					p.move(1)
				}
				draw()
			}
		case '\r', '\n':
			return finish(p.options[p.selected].Label)
		case 3, 'q':
			return finish("")
		case 'k':
			p.move(-1)
			draw()
		case 'j':
			p.move(1)
			draw()
		}
	}
}

func rawWrite(s string) {
	os.Stdout.WriteString(s)
}

// readWithTimeout reads from stdin for at most timeout. It returns 0 when
// nothing arrived, which distinguishes a lone Esc from an escape sequence.
func readWithTimeout(buf []byte, timeout time.Duration) int {
	fd := int(os.Stdin.Fd())
	syscall.SetNonblock(fd, true)
	defer syscall.SetNonblock(fd, false)

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			return n
		}
		if err != nil {
			return 0
		}
		time.Sleep(5 * time.Millisecond)
	}
	return 0
}
