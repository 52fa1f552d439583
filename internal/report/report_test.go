package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsolePlain(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Info("Retrieving playlists")
	c.Detail("  - Archiving metadata for 3 playlist items")

	assert.Equal(t, "Retrieving playlists\n  - Archiving metadata for 3 playlist items\n", buf.String())
}

func TestConsoleColorDimsDetail(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf).WithColor(true)

	c.Info("info")
	c.Detail("detail")

	assert.Equal(t, "info\n"+styleDim+"detail"+styleReset+"\n", buf.String())
}

func TestIsTerminalNonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Info("a")
	r.Detail("b")

	assert.Equal(t, []string{"a", "b"}, r.Texts())
	assert.True(t, r.Lines[1].Detail)
	assert.False(t, r.Lines[0].Detail)
}
