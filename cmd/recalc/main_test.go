package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktrack/internal/services"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.True(t, root.Runnable())
	assert.NotNil(t, root.Flags().Lookup("page-size"))
	assert.NotNil(t, root.Flags().Lookup("no-lock"))

	migrate, rest, err := root.Find([]string{"migrate", "up"})
	require.NoError(t, err)
	assert.Equal(t, "migrate", migrate.Name())
	assert.Equal(t, []string{"up"}, rest)
	assert.Nil(t, migrate.Flags().Lookup("page-size"))

	assert.Error(t, root.Args(root, []string{"extra"}))
	assert.NoError(t, root.Args(root, nil))
}

func TestMigrateCommand_RejectsUnknownDirection(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "sideways"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, services.RecalcSummary{
		Scanned: 12, Touched: 3, Failed: 1, FailedIDs: []string{"t9"}, Took: 1500 * time.Microsecond,
	})
	assert.Equal(t, "scanned=12 touched=3 failed=1 took=2ms\nfailed: t9\n", out.String())
}
