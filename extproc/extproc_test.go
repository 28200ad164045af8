package extproc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerr "github.com/nihei9/ltsc/error"
)

func TestResolve_EnvOverride(t *testing.T) {
	t.Setenv("LTSC_TEST_WAGON", "/custom/wagon")
	p, err := Resolve("wagon", "LTSC_TEST_WAGON")
	require.NoError(t, err)
	assert.Equal(t, "/custom/wagon", p)
}

func TestResolve_Missing(t *testing.T) {
	t.Setenv("LTSC_TEST_MISSING", "")
	_, err := Resolve("definitely-not-a-real-binary-xyz", "LTSC_TEST_MISSING")
	require.Error(t, err)
	assert.True(t, lerr.Is(err, lerr.KindSubprocessMissing))
}

func TestRun_Strict(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.log")
	err := Run(context.Background(), zerolog.Nop(), Policy{}, "sh", []string{"-c", "echo hello; exit 1"}, logPath)
	require.Error(t, err)

	b, rerr := os.ReadFile(logPath)
	require.NoError(t, rerr)
	assert.Contains(t, string(b), "hello")
}

func TestRun_Lenient(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.log")
	err := Run(context.Background(), zerolog.Nop(), Policy{Lenient: true}, "sh", []string{"-c", "exit 1"}, logPath)
	assert.NoError(t, err)
}
