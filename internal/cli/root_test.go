package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTAP answers ADQL queries with canned TAP JSON bodies.
type fakeTAP struct {
	mu      sync.Mutex
	bodies  map[string]string
	queries []string
}

func (f *fakeTAP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("query"))

	f.mu.Lock()
	f.queries = append(f.queries, q)
	body, ok := f.bodies[q]
	f.mu.Unlock()

	if !ok {
		http.Error(w, "unknown query: "+q, http.StatusBadRequest)
		return
	}
	fmt.Fprint(w, body)
}

func (f *fakeTAP) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

const pingADQL = "SELECT TOP 1 schema_name FROM TAP_SCHEMA.schemas"

func newFakeTAP(t *testing.T, bodies map[string]string) (*fakeTAP, string) {
	t.Helper()
	if _, ok := bodies[pingADQL]; !ok {
		bodies[pingADQL] = `{"metadata":[{"name":"schema_name","ucd":""}],"data":[["TAP_SCHEMA"]]}`
	}
	f := &fakeTAP{bodies: bodies}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL + "/tap/sync"
}

// run executes the root command with an isolated config directory.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("VIZIER_CONFIG_DIR", t.TempDir())
	t.Setenv("VIZIER_ENDPOINT", "")
	t.Setenv("VIZIER_LOG_LEVEL", "")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "vizier", cmd.Use)
	assert.Contains(t, cmd.Long, "Table Access Protocol")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"query", "tables", "columns", "endpoints"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	endpointFlag := cmd.PersistentFlags().Lookup("endpoint")
	require.NotNil(t, endpointFlag)
	assert.Equal(t, "e", endpointFlag.Shorthand)

	timeoutFlag := cmd.PersistentFlags().Lookup("timeout")
	require.NotNil(t, timeoutFlag)
	assert.Equal(t, "0s", timeoutFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, "--format", "yaml", "endpoints")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestBrokenConfigIsCommandError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIZIER_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("endpoints: [::"), 0o600))

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"endpoints"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
