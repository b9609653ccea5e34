package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "register", "migrate", "apikey"}, names)

	set, _, err := root.Find([]string{"apikey", "set"})
	require.NoError(t, err)
	assert.Equal(t, "set", set.Name())
}

func TestReadSecret_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("  my-key \n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	key, err := readSecret(r)
	require.NoError(t, err)
	assert.Equal(t, "my-key", key)
}

func TestMigrateCmd_SQLite(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "-store_dsn", "sqlite://" + t.TempDir() + "/cw.db"})
	assert.NoError(t, root.Execute())
}
