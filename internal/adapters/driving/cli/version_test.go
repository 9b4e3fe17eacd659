package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() { version = original })
}

func TestVersionCmd_Text(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	withVersion(t, "1.2.3")

	stdout, _, code := execute(nil, "version")

	assert.Equal(t, domain.ExitOK, code)
	assert.Equal(t, "reveal version 1.2.3 ("+runtime.Version()+", "+runtime.GOOS+"/"+runtime.GOARCH+")\n", stdout)
}

func TestVersionCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	withVersion(t, "1.2.3")

	stdout, _, code := execute(nil, "version", "-f", "json")

	require.Equal(t, domain.ExitOK, code)
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "1.2.3", out["version"])
	assert.Equal(t, runtime.Version(), out["go"])
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, code := execute(nil, "version", "extra")

	assert.Equal(t, domain.ExitUsage, code)
}
