package main

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-desk/library"
)

func TestSeedCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed-test.db")
	t.Setenv("LIBRARY_DB_PATH", path)
	t.Setenv("LIBRARY_LOG_LEVEL", "error")

	root := newRootCmd()
	root.SetArgs([]string{"seed"})
	require.NoError(t, root.Execute())

	// Running it again against the populated store stays a no-op.
	root = newRootCmd()
	root.SetArgs([]string{"seed"})
	require.NoError(t, root.Execute())

	db, err := library.NewDatabase(path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	n, err := db.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "lengthy...", truncateString("lengthy-title", 10))

	// Widths at or below the ellipsis length cut without decoration.
	assert.Equal(t, "ab", truncateString("abcdef", 2))
	assert.Equal(t, "abc", truncateString("abcdef", 3))
}
