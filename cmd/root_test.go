package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommand(t *testing.T) {
	rootCmd := newRootCommand()
	for _, args := range [][]string{
		{"disable"},
		{"not-sync"},
		{"enable"},
		{"resync"},
		{"config", "get-ignore-files"},
		{"version"},
	} {
		cmd, _, err := rootCmd.Find(args)
		assert.NoError(t, err, args)
		assert.Contains(t, append([]string{cmd.Name()}, cmd.Aliases...), args[len(args)-1])
	}
}
