package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/sidkik/nosync/pkg/events"
)

const logPrefix = "[nosync]"

// EventPrinter returns handlers that print events to `out`. Unless `verbose`
// is set, only moves, links and failures are printed.
func EventPrinter(out io.Writer, verbose bool) events.Handlers {
	printf := func(provider events.ProviderKey, format string, args ...interface{}) {
		prefix := logPrefix
		if provider != "" {
			prefix += fmt.Sprintf(" [%s]", provider)
		}
		fmt.Fprintf(out, "%s %s\n", prefix, fmt.Sprintf(format, args...))
	}

	handlers := events.Handlers{
		NotFound: func(paths []string) {
			printf("", "Not synced by any cloud provider: %s", quoteAll(paths))
		},
		Move: func(provider events.ProviderKey, from, to string) {
			printf(provider, "%q is moved to %q.", from, to)
		},
		MoveFail: func(provider events.ProviderKey, code events.MoveErrorCode, from, to string) {
			printf(provider, "Skipped %s", describeMoveFail(code, from, to))
		},
		Symlink: func(provider events.ProviderKey, target, path string) {
			printf(provider, "%q is linked to %q.", path, target)
		},
	}

	if verbose {
		handlers.Found = func(provider events.ProviderKey, paths []string) {
			printf(provider, "Found %s", quoteAll(paths))
		}
		handlers.Delete = func(provider events.ProviderKey, path string, kind events.DeleteKind) {
			if kind == events.DeletedParent {
				printf(provider, "Deleted empty directory %q.", path)
			} else {
				printf(provider, "Deleted symbolic link %q.", path)
			}
		}
		handlers.AddEntry = func(provider events.ProviderKey, ignoreFile string, entries []string) {
			printf(provider, "Added %s to %q.", quoteAll(entries), ignoreFile)
		}
		handlers.DeleteEntry = func(provider events.ProviderKey, ignoreFile string, entries []string) {
			printf(provider, "Removed %s from %q.", quoteAll(entries), ignoreFile)
		}
	}
	return handlers
}

func describeMoveFail(code events.MoveErrorCode, from, to string) string {
	switch code {
	case events.SourceMissing:
		return fmt.Sprintf("%q because it doesn't exist.", from)
	case events.LinkAlreadyExists:
		return fmt.Sprintf("%q because it's already linked to %q.", from, to)
	case events.NotALink:
		return fmt.Sprintf("%q because it's not a symbolic link.", to)
	case events.NotFound:
		return fmt.Sprintf("%q because it doesn't exist.", to)
	case events.LinkTargetMissing:
		return fmt.Sprintf("%q because the file it links to, %q, doesn't exist.", to, from)
	default:
		return fmt.Sprintf("%q -> %q (%s).", from, to, code)
	}
}

func quoteAll(strs []string) string {
	quoted := make([]string, 0, len(strs))
	for _, s := range strs {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return strings.Join(quoted, ", ")
}
