//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	seleniumgrid "github.com/wagiedev/selenium-grid-go"
)

// fakeJava stands in for `java -jar selenium-server.jar`. It prints what the
// real server prints once it listens and runs until SIGTERM.
const fakeJava = `#!/bin/sh
trap 'exit 0' TERM
case "$*" in
  *"-role hub"*) echo "INFO - Started SocketConnector@0.0.0.0:4444" >&2 ;;
  *) echo "INFO - Started org.openqa.jetty.jetty.servlet.ServletHandler" ;;
esac
while :; do sleep 0.1; done
`

// fakePhantomJS registers with the hub and runs until SIGTERM.
const fakePhantomJS = `#!/bin/sh
trap 'exit 0' TERM
echo "[INFO  - 2014-01-01T00:00:00.000Z] HUB Register - Registered with grid hub: $3"
while :; do sleep 0.1; done
`

type fixture struct {
	java   string
	jar    string
	client string
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))

	return path
}

// newFixture writes fake java and phantomjs executables into a temp dir.
// The java script can be replaced to script a failure.
func newFixture(t *testing.T, java string) fixture {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake binaries are shell scripts")
	}

	dir := t.TempDir()

	jar := filepath.Join(dir, "selenium-server-standalone.jar")
	require.NoError(t, os.WriteFile(jar, nil, 0o600))

	return fixture{
		java:   writeScript(t, dir, "java", java),
		jar:    jar,
		client: writeScript(t, dir, "phantomjs", fakePhantomJS),
	}
}

func (f fixture) options(extra ...seleniumgrid.Option) []seleniumgrid.Option {
	return append([]seleniumgrid.Option{
		seleniumgrid.WithJavaPath(f.java),
		seleniumgrid.WithServerJar(f.jar),
		seleniumgrid.WithClientPath(f.client),
		seleniumgrid.WithSkipVersionCheck(true),
		seleniumgrid.WithExitHook(false),
		seleniumgrid.WithFatalHandler(func(error) {}),
	}, extra...)
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	return ctx
}

// skipIfNotInstalled skips the test if the error indicates a binary is missing.
func skipIfNotInstalled(t *testing.T, err error) {
	t.Helper()

	if notFound, ok := errors.AsType[*seleniumgrid.BinaryNotFoundError](err); ok {
		t.Skipf("%s not installed", notFound.Name)
	}
}

func requireJava(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("java"); err != nil {
		t.Skip("java not installed")
	}
}
