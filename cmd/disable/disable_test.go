package disable

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/nosync/pkg/config"
	"github.com/sidkik/nosync/pkg/errors"
	"github.com/sidkik/nosync/pkg/events"
	"github.com/sidkik/nosync/pkg/nosync"
)

type disableCall struct {
	paths []string
	opts  nosync.Options
}

func mockDisable(t *testing.T, cfg config.User, cfgErr error) *[]disableCall {
	var calls []disableCall
	origStdout, origLoad, origDisable := stdout, loadUserConfig, disable
	t.Cleanup(func() {
		stdout, loadUserConfig, disable = origStdout, origLoad, origDisable
	})

	stdout = &bytes.Buffer{}
	loadUserConfig = func() (config.User, error) { return cfg, cfgErr }
	disable = func(paths []string, opts nosync.Options) error {
		calls = append(calls, disableCall{paths, opts})
		return nil
	}
	return &calls
}

func TestDisable(t *testing.T) {
	calls := mockDisable(t, config.User{IgnoreFiles: []string{".gitignore"}}, nil)

	cmd := New()
	cmd.SetArgs([]string{"node_modules,dist", "--root", "dropbox=/data/Dropbox"})
	require.NoError(t, cmd.Execute())

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, []string{"node_modules", "dist"}, call.paths)
	assert.Equal(t, []string{".gitignore"}, call.opts.IgnoreFiles)
	assert.Equal(t, map[events.ProviderKey]string{"dropbox": "/data/Dropbox"}, call.opts.Roots)
	assert.True(t, call.opts.LinkInPlace)
	assert.True(t, call.opts.CreateMissingDirs)
	assert.NotNil(t, call.opts.Events.Symlink)
	assert.Equal(t, []string{"not-sync"}, cmd.Aliases)
}

func TestDisableNoPaths(t *testing.T) {
	calls := mockDisable(t, config.User{}, errors.New("unused"))

	assert.NoError(t, run(nil, nil))
	assert.NoError(t, run([]string{" , "}, nil))
	assert.Empty(t, *calls)
}

func TestDisableConfigError(t *testing.T) {
	cfgErr := errors.NewFriendlyError("bad config")
	calls := mockDisable(t, config.User{}, cfgErr)

	err := run([]string{"dist"}, nil)
	assert.Equal(t, errors.WithContext(cfgErr, "read config"), err)
	assert.Empty(t, *calls)
}
