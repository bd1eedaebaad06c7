package errors

import (
	"fmt"
)

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// NotALink is returned when a path that was expected to be a symbolic link
// exists but is a regular file or directory.
type NotALink struct {
	Path string
}

func (err NotALink) Error() string {
	return fmt.Sprintf("%q is not a symbolic link", err.Path)
}

// LinkTargetMissing is returned when a symbolic link exists but the path it
// points to doesn't.
type LinkTargetMissing struct {
	Path   string
	Target string
}

func (err LinkTargetMissing) Error() string {
	return fmt.Sprintf("link target cannot be found: %q -> %q", err.Path, err.Target)
}

// NoRootError is returned when a cloud provider has neither a default nor a
// user supplied root directory.
type NoRootError struct {
	Provider string
}

func (err NoRootError) Error() string {
	return fmt.Sprintf("root cannot be found for cloud service %s", err.Provider)
}

// AmbiguousStateError is returned when both the original path and its
// relocated copy exist, and the original isn't a symbolic link. Moving
// either one would overwrite the other, so we refuse to guess.
type AmbiguousStateError struct {
	Path   string
	Target string
}

func (err AmbiguousStateError) Error() string {
	return fmt.Sprintf("both original and destination exist, but original "+
		"is not a symbolic link: %q (destination %q)", err.Path, err.Target)
}

// FriendlyMessage explains how the user can recover.
func (err AmbiguousStateError) FriendlyMessage() string {
	return fmt.Sprintf("Both %q and %q exist, and %q is not a symbolic link.\n"+
		"Remove one of them and try again.", err.Path, err.Target, err.Path)
}
