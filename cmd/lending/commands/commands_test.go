package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

func writeConfig(t *testing.T, extra ...string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "lending.toml")
	content := `
[database]
driver = "sqlite"
dsn = "` + filepath.ToSlash(filepath.Join(dir, "lending.db")) + `"

[log]
level = "error"

[credential]
bcrypt_cost = 4
` + strings.Join(extra, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	release()

	return out.String(), err
}

func Test_LibrarianCreate_When_SchemaIsMigrated(t *testing.T) {
	// setup
	configFile := writeConfig(t)
	_, err := run(t, "--config", configFile, "migrate")
	require.NoError(t, err)

	// act
	out, err := run(t, "--config", configFile, "librarian", "create",
		"--name", "Ada Admin",
		"--email", "ada@example.org",
		"--password", "s3cret-pass",
		"--employee-number", "E-1",
	)

	// assert
	require.NoError(t, err)

	var person map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &person))
	assert.Equal(t, "LIBRARIAN", person["kind"])
	assert.Equal(t, "ada@example.org", person["email"])
	assert.NotContains(t, out, "s3cret-pass")
	assert.NotContains(t, person, "credential")
}

func Test_Report_When_NoLoansExist(t *testing.T) {
	// setup
	configFile := writeConfig(t)
	_, err := run(t, "--config", configFile, "migrate")
	require.NoError(t, err)

	// act
	out, err := run(t, "--config", configFile, "report")

	// assert
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, float64(0), summary["overdue"])
	assert.Contains(t, summary, "countsByState")
	assert.Contains(t, summary, "generatedOn")
}

func Test_LoanState_When_LoanDoesNotExist(t *testing.T) {
	// setup
	configFile := writeConfig(t)
	_, err := run(t, "--config", configFile, "migrate")
	require.NoError(t, err)

	// act
	_, err = run(t, "--config", configFile, "loan", "state", uuid.NewString(), "returned")

	// assert
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func Test_LoanState_When_TargetStateIsUnknown(t *testing.T) {
	// setup
	configFile := writeConfig(t)
	_, err := run(t, "--config", configFile, "migrate")
	require.NoError(t, err)

	// act
	_, err = run(t, "--config", configFile, "loan", "state", uuid.NewString(), "lost")

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidTransition)
}

func Test_Root_When_ConfigFileIsMissing(t *testing.T) {
	// act
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "migrate")

	// assert
	assert.Error(t, err)
}

func Test_Report_When_TelemetryIsEnabled(t *testing.T) {
	// setup
	configFile := writeConfig(t, "[telemetry]", "enabled = true")
	_, err := run(t, "--config", configFile, "migrate")
	require.NoError(t, err)

	// act
	out, err := run(t, "--config", configFile, "report")

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "countsByState")
}
