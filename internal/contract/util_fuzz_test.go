package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText fuzzes TruncateText with random text and widths.
func FuzzTruncateText(f *testing.F) {
	seeds := []struct {
		text  string
		width int
	}{
		{"monthly_revenue_report", 10},
		{"", 0},
		{"收入报表", 4},
		{"abc", -1},
	}
	for _, seed := range seeds {
		f.Add(seed.text, seed.width)
	}

	f.Fuzz(func(t *testing.T, text string, width int) {
		out := TruncateText(text, width)
		if width > 3 && utf8.RuneCountInString(out) > width && utf8.ValidString(text) {
			t.Errorf("TruncateText(%q, %d) = %q exceeds width", text, width, out)
		}
	})
}
