package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseTogglesDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})

	SetVerbose(false)
	Debug("hidden", "file", "a.jpg")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown", "file", "a.jpg")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "file=a.jpg")

	buf.Reset()
	Warn("skipping", "reason", "unsupported")
	assert.Contains(t, buf.String(), "level=WARN")
}
