// Package events defines the notifications emitted for every observable side
// effect of excluding or restoring files.
package events

import (
	"sync"
)

// ProviderKey identifies a cloud provider in events and options.
type ProviderKey string

// MoveErrorCode classifies why a single path was skipped. These conditions
// are expected and never abort the batch.
type MoveErrorCode int

const (
	// SourceMissing means the path to exclude doesn't exist.
	SourceMissing MoveErrorCode = iota

	// LinkAlreadyExists means both the path and its link target exist, and
	// the path is already a symbolic link.
	LinkAlreadyExists

	// NotALink means the path to restore is not a symbolic link.
	NotALink

	// NotFound means the path to restore doesn't exist.
	NotFound

	// LinkTargetMissing means the path to restore is a link, but the file it
	// points to doesn't exist.
	LinkTargetMissing
)

func (code MoveErrorCode) String() string {
	switch code {
	case SourceMissing:
		return "SourceMissing"
	case LinkAlreadyExists:
		return "LinkAlreadyExists"
	case NotALink:
		return "NotALink"
	case NotFound:
		return "NotFound"
	case LinkTargetMissing:
		return "LinkTargetMissing"
	default:
		return "Unknown"
	}
}

// DeleteKind describes what was deleted in a Delete event.
type DeleteKind string

const (
	// DeletedSymlink is used when the link at the original path is removed.
	DeletedSymlink DeleteKind = "symlink"

	// DeletedParent is used when an empty directory left behind in the
	// target root is removed.
	DeletedParent DeleteKind = "parent"
)

// Handlers holds the callbacks invoked for each event. Any of them may be
// nil, in which case the event is dropped.
type Handlers struct {
	// Found is called with the paths that belong to a provider.
	Found func(provider ProviderKey, paths []string)

	// NotFound is called once with the paths that belong to no provider.
	NotFound func(paths []string)

	// Move is called after a file or directory is moved.
	Move func(provider ProviderKey, from, to string)

	// MoveFail is called when a path is skipped. `from` or `to` may be empty
	// if they aren't known.
	MoveFail func(provider ProviderKey, code MoveErrorCode, from, to string)

	// Symlink is called after a link pointing at `target` is created at `path`.
	Symlink func(provider ProviderKey, target, path string)

	// Delete is called after a link or an empty parent directory is removed.
	Delete func(provider ProviderKey, path string, kind DeleteKind)

	// AddEntry is called after entries are appended to an ignore file.
	AddEntry func(provider ProviderKey, ignoreFile string, entries []string)

	// DeleteEntry is called after entries are removed from an ignore file.
	DeleteEntry func(provider ProviderKey, ignoreFile string, entries []string)
}

// Emitter dispatches events to Handlers. Operations run concurrently, so the
// emitter serializes calls to make sure handlers never run in parallel.
// The zero value and a nil *Emitter both drop every event.
type Emitter struct {
	handlers Handlers
	lock     sync.Mutex
}

// NewEmitter returns an Emitter that calls `handlers`.
func NewEmitter(handlers Handlers) *Emitter {
	return &Emitter{handlers: handlers}
}

func (e *Emitter) fire(fn func(h Handlers)) {
	if e == nil {
		return
	}

	e.lock.Lock()
	defer e.lock.Unlock()
	fn(e.handlers)
}

// Found emits a Found event.
func (e *Emitter) Found(provider ProviderKey, paths []string) {
	e.fire(func(h Handlers) {
		if h.Found != nil {
			h.Found(provider, paths)
		}
	})
}

// NotFound emits a NotFound event.
func (e *Emitter) NotFound(paths []string) {
	e.fire(func(h Handlers) {
		if h.NotFound != nil {
			h.NotFound(paths)
		}
	})
}

// Move emits a Move event.
func (e *Emitter) Move(provider ProviderKey, from, to string) {
	e.fire(func(h Handlers) {
		if h.Move != nil {
			h.Move(provider, from, to)
		}
	})
}

// MoveFail emits a MoveFail event.
func (e *Emitter) MoveFail(provider ProviderKey, code MoveErrorCode, from, to string) {
	e.fire(func(h Handlers) {
		if h.MoveFail != nil {
			h.MoveFail(provider, code, from, to)
		}
	})
}

// Symlink emits a Symlink event.
func (e *Emitter) Symlink(provider ProviderKey, target, path string) {
	e.fire(func(h Handlers) {
		if h.Symlink != nil {
			h.Symlink(provider, target, path)
		}
	})
}

// Delete emits a Delete event.
func (e *Emitter) Delete(provider ProviderKey, path string, kind DeleteKind) {
	e.fire(func(h Handlers) {
		if h.Delete != nil {
			h.Delete(provider, path, kind)
		}
	})
}

// AddEntry emits an AddEntry event.
func (e *Emitter) AddEntry(provider ProviderKey, ignoreFile string, entries []string) {
	e.fire(func(h Handlers) {
		if h.AddEntry != nil {
			h.AddEntry(provider, ignoreFile, entries)
		}
	})
}

// DeleteEntry emits a DeleteEntry event.
func (e *Emitter) DeleteEntry(provider ProviderKey, ignoreFile string, entries []string) {
	e.fire(func(h Handlers) {
		if h.DeleteEntry != nil {
			h.DeleteEntry(provider, ignoreFile, entries)
		}
	})
}
