package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateName fuzzes TruncateName with random names and widths.
func FuzzTruncateName(f *testing.F) {
	f.Add("apache/commons-lang", 10)
	f.Add("", 0)
	f.Add("ñ/ñ", 4)
	f.Add("owner/name", -5)

	f.Fuzz(func(t *testing.T, name string, width int) {
		got := TruncateName(name, width)
		if width > 3 && utf8.RuneCountInString(name) > width && utf8.RuneCountInString(got) != width {
			t.Errorf("TruncateName(%q, %d) = %q, want %d runes", name, width, got, width)
		}
	})
}
