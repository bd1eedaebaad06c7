package fsutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestDetectEOL(t *testing.T) {
	tests := []struct {
		name, input, exp string
	}{
		{"Fallback", "a", "\n"},
		{"Empty", "", "\n"},
		{"CR", "a\r", "\r"},
		{"CRLF", "a\r\nb", "\r\n"},
		{"LF", "a\nb\r\n", "\n"},
		{"LeadingLF", "\na", "\n"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, DetectEOL(test.input, "\n"))
		})
	}
}

func TestReadLines(t *testing.T) {
	afs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(afs, "/.gitignore", []byte("IGI\r\nnode_modules\r\n"), 0644))

	lines, err := ReadLines(afs, "/.gitignore")
	assert.NoError(t, err)
	assert.Equal(t, Lines{Lines: []string{"IGI", "node_modules", ""}, EOL: "\r\n"}, lines)
	assert.Equal(t, "IGI\r\nnode_modules\r\n", lines.String())

	_, err = ReadLines(afs, "/missing")
	assert.Error(t, err)
}
