package fsutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "nosync-fsutil-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	// Resolve symlinked temp dirs (e.g. /var -> /private/var on macOS) so
	// that paths compare equal.
	dir, err = filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return dir
}

func writeFile(t *testing.T, path, contents string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
}

func TestStatNoFollow(t *testing.T) {
	dir := tempDir(t)
	file := filepath.Join(dir, "file")
	link := filepath.Join(dir, "link")
	writeFile(t, file, "contents")
	require.NoError(t, os.Symlink("file", link))

	fi, err := StatNoFollow(filepath.Join(dir, "missing"))
	assert.NoError(t, err)
	assert.Nil(t, fi)

	fi, err = StatNoFollow(file)
	assert.NoError(t, err)
	assert.False(t, IsSymlink(fi))

	fi, err = StatNoFollow(link)
	assert.NoError(t, err)
	assert.True(t, IsSymlink(fi))
}

func TestReadLinkTarget(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, filepath.Join(dir, "target", "file"), "contents")
	require.NoError(t, os.Symlink(filepath.Join("target", "file"), filepath.Join(dir, "relative")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "target"), filepath.Join(dir, "absolute")))
	require.NoError(t, os.Symlink("missing", filepath.Join(dir, "dangling")))
	writeFile(t, filepath.Join(dir, "regular"), "")

	tests := []struct {
		name     string
		path     string
		absolute bool
		exp      string
		expErr   error
	}{
		{
			name: "RelativeLink",
			path: filepath.Join(dir, "relative"),
			exp:  filepath.Join("target", "file"),
		},
		{
			name:     "RelativeLinkResolved",
			path:     filepath.Join(dir, "relative"),
			absolute: true,
			exp:      filepath.Join(dir, "target", "file"),
		},
		{
			name: "AbsoluteLink",
			path: filepath.Join(dir, "absolute"),
			exp:  filepath.Join(dir, "target"),
		},
		{
			name:   "NotFound",
			path:   filepath.Join(dir, "missing"),
			expErr: errors.FileNotFound{Path: filepath.Join(dir, "missing")},
		},
		{
			name:   "NotALink",
			path:   filepath.Join(dir, "regular"),
			expErr: errors.NotALink{Path: filepath.Join(dir, "regular")},
		},
		{
			name: "TargetMissing",
			path: filepath.Join(dir, "dangling"),
			expErr: errors.LinkTargetMissing{
				Path:   filepath.Join(dir, "dangling"),
				Target: filepath.Join(dir, "missing"),
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			target, err := ReadLinkTarget(test.path, test.absolute)
			assert.Equal(t, test.expErr, err)
			assert.Equal(t, test.exp, target)
		})
	}
}

type recordedMove struct {
	provider events.ProviderKey
	from, to string
}

func TestMove(t *testing.T) {
	dir := tempDir(t)
	from := filepath.Join(dir, "project", "node_modules", "index.js")
	to := filepath.Join(dir, "linked", "project", "node_modules", "index.js")
	writeFile(t, from, "contents")

	var moves []recordedMove
	f := &FS{
		Cwd:      filepath.Join(dir, "project"),
		Provider: "dropbox",
		Events: events.NewEmitter(events.Handlers{
			Move: func(provider events.ProviderKey, from, to string) {
				moves = append(moves, recordedMove{provider, from, to})
			},
		}),
	}

	require.NoError(t, f.Move(from, to))
	contents, err := ioutil.ReadFile(to)
	assert.NoError(t, err)
	assert.Equal(t, "contents", string(contents))
	assert.NoFileExists(t, from)

	assert.Equal(t, []recordedMove{
		{"dropbox", filepath.Join("node_modules", "index.js"), to},
	}, moves)
}

func TestDryRunDoesNotTouchDisk(t *testing.T) {
	dir := tempDir(t)
	from := filepath.Join(dir, "a")
	to := filepath.Join(dir, "b", "a")
	writeFile(t, from, "contents")

	var symlinks, deletes int
	f := &FS{
		Cwd: dir,
		Dry: true,
		Events: events.NewEmitter(events.Handlers{
			Symlink: func(events.ProviderKey, string, string) { symlinks++ },
			Delete:  func(events.ProviderKey, string, events.DeleteKind) { deletes++ },
		}),
	}

	assert.NoError(t, f.Move(from, to))
	assert.NoError(t, f.Symlink(to, from))
	assert.NoError(t, f.RemoveLink(from, "a"))
	assert.NoError(t, f.MkdirParents(filepath.Join(dir, "x", "y", "z")))

	assert.FileExists(t, from)
	assert.NoDirExists(t, filepath.Join(dir, "b"))
	assert.NoDirExists(t, filepath.Join(dir, "x"))
	assert.Equal(t, 1, symlinks)
	assert.Equal(t, 1, deletes)
}

func TestSymlinkAndRemoveLink(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, filepath.Join(dir, "a.nosync"), "contents")

	var deleted []string
	f := &FS{
		Cwd: dir,
		Events: events.NewEmitter(events.Handlers{
			Delete: func(_ events.ProviderKey, path string, kind events.DeleteKind) {
				assert.Equal(t, events.DeletedSymlink, kind)
				deleted = append(deleted, path)
			},
		}),
	}

	link := filepath.Join(dir, "a")
	require.NoError(t, f.Symlink("a.nosync", link))
	target, err := ReadLinkTarget(link, false)
	assert.NoError(t, err)
	assert.Equal(t, "a.nosync", target)

	require.NoError(t, f.RemoveLink(link, "a"))
	fi, err := StatNoFollow(link)
	assert.NoError(t, err)
	assert.Nil(t, fi)
	assert.Equal(t, []string{"a"}, deleted)
}

func TestSymlinkUnsupportedFs(t *testing.T) {
	defer func(orig afero.Fs) { fs = orig }(fs)
	fs = afero.NewMemMapFs()

	err := (&FS{}).Symlink("a", "b")
	assert.Error(t, err)
}

func TestRemoveEmptyParents(t *testing.T) {
	dir := tempDir(t)
	stop := filepath.Join(dir, "linked")
	start := filepath.Join(stop, "Development", "project", "src", "utils", "k")
	writeFile(t, filepath.Join(stop, "Development", "other", "file"), "")
	require.NoError(t, os.MkdirAll(filepath.Dir(start), 0755))

	removed, err := RemoveEmptyParents(start, stop, false)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(stop, "Development", "project", "src", "utils"),
		filepath.Join(stop, "Development", "project", "src"),
		filepath.Join(stop, "Development", "project"),
	}, removed)
	assert.DirExists(t, filepath.Join(stop, "Development"))
	assert.NoDirExists(t, filepath.Join(stop, "Development", "project"))
}

func TestRemoveEmptyParentsKeepsStop(t *testing.T) {
	dir := tempDir(t)
	stop := filepath.Join(dir, "linked")
	start := filepath.Join(stop, "a", "b")
	require.NoError(t, os.MkdirAll(filepath.Dir(start), 0755))

	removed, err := RemoveEmptyParents(start, stop, false)
	assert.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(stop, "a")}, removed)
	assert.DirExists(t, stop)
}

func TestRemoveEmptyParentsOutsideStop(t *testing.T) {
	dir := tempDir(t)
	start := filepath.Join(dir, "project", "a.nosync")
	require.NoError(t, os.MkdirAll(filepath.Dir(start), 0755))

	removed, err := RemoveEmptyParents(start, filepath.Join(dir, "linked"), false)
	assert.NoError(t, err)
	assert.Empty(t, removed)
	assert.DirExists(t, filepath.Join(dir, "project"))
}

func TestRemoveEmptyParentsDryRun(t *testing.T) {
	dir := tempDir(t)
	stop := filepath.Join(dir, "linked")
	start := filepath.Join(stop, "a", "b", "file")
	writeFile(t, start, "contents")

	removed, err := RemoveEmptyParents(start, stop, true)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(stop, "a", "b"),
		filepath.Join(stop, "a"),
	}, removed)
	assert.FileExists(t, start)
}

func TestRemoveEmptyParentsAlreadyRemoved(t *testing.T) {
	dir := tempDir(t)
	stop := filepath.Join(dir, "linked")
	require.NoError(t, os.MkdirAll(stop, 0755))

	removed, err := RemoveEmptyParents(filepath.Join(stop, "a", "b"), stop, false)
	assert.NoError(t, err)
	assert.Empty(t, removed)
}
