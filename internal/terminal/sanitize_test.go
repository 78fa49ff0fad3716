package terminal

import "testing"

func TestSanitizeANSI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"keeps color", "\x1b[31mred\x1b[0m", "\x1b[31mred\x1b[0m"},
		{"drops clear screen", "a\x1b[2Jb", "ab"},
		{"drops cursor move", "\x1b[10;5Hx", "x"},
		{"drops title osc", "\x1b]0;pwned\x07text", "text"},
		{"drops lone escape", "\x1bcreset", "reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeANSI(tt.in); got != tt.want {
				t.Errorf("SanitizeANSI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
