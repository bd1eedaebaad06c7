package fsutil

import (
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

// PlatformEOL is the line ending used for new files on this platform.
var PlatformEOL = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// Lines is the content of a text file split on its line ending.
type Lines struct {
	Lines []string
	EOL   string
}

// String joins the lines back together. For unmodified Lines it returns the
// original file contents.
func (l Lines) String() string {
	return strings.Join(l.Lines, l.EOL)
}

// ReadLines reads the file at `path` from `afs`, and splits it into lines.
// A file that ends with a line ending has an empty last line.
func ReadLines(afs afero.Fs, path string) (Lines, error) {
	contents, err := afero.ReadFile(afs, path)
	if err != nil {
		return Lines{}, err
	}

	str := string(contents)
	eol := DetectEOL(str, PlatformEOL)
	return Lines{Lines: strings.Split(str, eol), EOL: eol}, nil
}

// DetectEOL returns the first line ending used in `str`, or `fallback` if it
// has none.
func DetectEOL(str, fallback string) string {
	idx := strings.Index(str, "\n")
	if idx == -1 {
		if strings.Contains(str, "\r") {
			return "\r"
		}
		return fallback
	}

	if idx > 0 && str[idx-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
