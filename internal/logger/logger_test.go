package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture turns the trace on into a buffer and restores the defaults.
func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(nil)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("parsed %s", "env://HOME") }, "[DEBUG] parsed env://HOME\n"},
		{"info", func() { Info("MCP server on %s", ":8080") }, "[INFO] MCP server on :8080\n"},
		{"warn", func() { Warn("ignoring %q", "x") }, "[WARN] ignoring \"x\"\n"},
		{"stage", func() { Stage("filter", 10, 3) }, "[STAGE] filter     10 -> 3\n"},
		{"section", func() { Section("Query") }, "\n=== Query ===\n"},
		{"trailing newline trimmed", func() { Debug("line\n") }, "[DEBUG] line\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSilentWhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("a")
	Info("b")
	Warn("c")
	Stage("sort", 1, 1)
	Section("Batch")

	assert.Empty(t, buf.String())
}

func TestConcurrentLinesDoNotInterleave(t *testing.T) {
	buf := capture(t, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Debug("worker %d done", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "[DEBUG] worker "), line)
	}
}
