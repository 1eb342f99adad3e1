package gallery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{"long string", "0123456789", 4, "...6789"},
		{"exact length", "0123456789", 10, "0123456789"},
		{"shorter than max", "abc", 10, "abc"},
		{"empty", "", 0, ""},
		{"zero max", "abc", 0, "..."},
		{"negative max", "abc", -2, "..."},
		{"path", "/home/thibault/Images/2007/06/02/000036.JPG", 14, ".../02/000036.JPG"},
		{"runes", "Février/été.jpg", 7, "...été.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxLength))
		})
	}
}

func TestTruncate_Length(t *testing.T) {
	s := strings.Repeat("abcdefghij", 5)
	for n := 0; n < len(s); n++ {
		got := Truncate(s, n)
		assert.Len(t, got, n+3)
		assert.True(t, strings.HasPrefix(got, "..."))
		assert.True(t, strings.HasSuffix(s, got[3:]))
	}
}
