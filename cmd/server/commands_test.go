package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
	} {
		cmd, rest, err := root.Find(path)
		require.NoError(t, err, "%v", path)
		assert.Empty(t, rest)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestMigrateDownSteps(t *testing.T) {
	root := newRootCmd()
	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)

	flag := down.Flags().Lookup("steps")
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.DefValue)

	require.NoError(t, down.Flags().Parse([]string{"--steps", "3"}))
	assert.Equal(t, "3", flag.Value.String())
}

func TestMigrateDownRejectsNegativeSteps(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "down", "--steps=-1"})
	root.SilenceErrors = true

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps")
}

func TestServeFlags(t *testing.T) {
	serve, _, err := newRootCmd().Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("skip-migrations"))
}
