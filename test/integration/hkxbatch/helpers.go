package hkxbatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "hkxbatch"
	}

	// go test changes the CWD to the test package directory, relative paths would
	// not point to the binary.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("HKXBATCH_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("hkxbatch binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "HKXBATCH_INTEGRATION"
		envBinary     = "HKXBATCH_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}
	if runtime.GOOS == "windows" {
		t.Skip("Skipping integration test: stand-in tools are shell scripts")
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// hkxcmdScript behaves like hkxcmd convert: it writes the -o file, and fails like
// the real tool on inputs with "broken" in their name.
const hkxcmdScript = `#!/bin/sh
in=""
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -i) in="$2"; shift ;;
    -o) out="$2"; shift ;;
  esac
  shift
done
case "$in" in
  *broken*) echo "corrupted havok file" >&2; exit 3 ;;
esac
printf 'converted' > "$out"
`

// NewDataDir returns a data dir with a stand-in hkxcmd in its tools directory.
func NewDataDir(t *testing.T) string {
	t.Helper()

	dataDir := t.TempDir()
	toolsDir := filepath.Join(dataDir, conventions.ToolsDir)
	if err := os.MkdirAll(toolsDir, 0o755); err != nil {
		t.Fatalf("could not create tools dir: %s", err)
	}
	if err := os.WriteFile(filepath.Join(toolsDir, conventions.HkxCmdExe), []byte(hkxcmdScript), 0o755); err != nil {
		t.Fatalf("could not write hkxcmd: %s", err)
	}

	return dataDir
}

// WriteInputs creates fake animation files inside dir.
func WriteInputs(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("could not create input dir: %s", err)
		}
		if err := os.WriteFile(p, []byte("havok-data"), 0o644); err != nil {
			t.Fatalf("could not write input: %s", err)
		}
	}
}

// RunCmd runs an hkxbatch command using dataDir, with logging disabled.
func RunCmd(ctx context.Context, config Config, dataDir string, args ...string) (stdout, stderr []byte, err error) {
	fullArgs := append([]string{"--no-log", "--data-dir", dataDir}, args...)
	return testutils.RunHkxbatchArgs(ctx, nil, config.Binary, fullArgs, true)
}
