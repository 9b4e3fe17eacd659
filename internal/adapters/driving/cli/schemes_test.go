package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

func TestSchemesCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, code := execute(nil, "schemes")

	assert.Equal(t, domain.ExitOK, code)
	assert.JSONEq(t, `{"items":[
		{"scheme":"env","description":"Environment variables"},
		{"scheme":"github","description":"GitHub repositories"}
	]}`, stdout)
}

func TestSchemesCmd_Text(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, code := execute(nil, "schemes", "-f", "text")

	assert.Equal(t, domain.ExitOK, code)
	assert.Equal(t, "env     Environment variables\ngithub  GitHub repositories\n", stdout)
}

func TestDescribeCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, code := execute(nil, "describe", "github://")

	assert.Equal(t, domain.ExitOK, code)
	assert.JSONEq(t, `{
		"scheme":"github",
		"description":"GitHub repositories",
		"structure":true,
		"element":true,
		"availableElements":true,
		"schema":[{"name":"stars","type":"int","description":"Stargazer count"}],
		"operators":[],
		"examples":["github://golang/go"]
	}`, stdout)
}

func TestDescribeCmd_UnknownScheme(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, code := execute(nil, "describe", "nope")

	assert.Equal(t, domain.ExitUsage, code)
	assert.Contains(t, stdout, `"kind": "unknown_scheme"`)
}
