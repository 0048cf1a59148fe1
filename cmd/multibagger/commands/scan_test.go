package commands

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "Opera Limited", 30, "Opera Limited"},
		{"exactly at limit", "abcde", 5, "abcde"},
		{"ascii truncated", "International Business Machines Corporation", 13, "International"},
		{"multibyte not split", "Häagen-Dazs Höldings Incorporäted", 12, "Häagen-Dazs "},
		{"multibyte at boundary", "ñññ", 2, "ññ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
