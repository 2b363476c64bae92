package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrashReport(t *testing.T) {
	report := CrashReport("boom", time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC))

	assert.Contains(t, report, "GAPPER CRASH REPORT")
	assert.Contains(t, report, "2026-10-19T14:00:00Z")
	assert.Contains(t, report, "boom")
	assert.Contains(t, report, "TestCrashReport")
}

func TestWriteCrashFile(t *testing.T) {
	previous := CrashLogDir
	t.Cleanup(func() { CrashLogDir = previous })

	dir := filepath.Join(t.TempDir(), "logs")
	InstallCrashHandler(dir)
	require.Equal(t, dir, CrashLogDir)

	path := WriteCrashFile("worker exploded")
	require.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "worker exploded")
}
