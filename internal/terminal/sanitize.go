package terminal

import "regexp"

var (
	// ansiSGR matches color and style sequences, which are safe to print.
	ansiSGR = regexp.MustCompile(`^\x1b\[[0-9;]*m$`)
	// ansiCSI matches any control sequence introducer.
	ansiCSI = regexp.MustCompile(`\x1b\[[\x20-\x3f]*[\x40-\x7e]`)
	// ansiOSC matches operating system commands (window title, hyperlinks).
	ansiOSC = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)
	// ansiLone matches any other two-byte escape.
	ansiLone = regexp.MustCompile(`\x1b[^\[\]]`)
)

// SanitizeANSI strips escape sequences that move the cursor, clear the
// screen, or change terminal state from model text. Color sequences are kept.
func SanitizeANSI(s string) string {
	s = ansiOSC.ReplaceAllString(s, "")
	s = ansiCSI.ReplaceAllStringFunc(s, func(seq string) string {
		if ansiSGR.MatchString(seq) {
			return seq
		}
		return ""
	})
	return ansiLone.ReplaceAllString(s, "")
}
