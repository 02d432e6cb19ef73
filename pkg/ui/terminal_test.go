package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Error("Login failed", "wrong password")
	p.Warning("No session saved")
	p.Success("Session saved: me")
	p.Info("Phase", "authenticated")
	p.Highlight("Saved sessions")
	p.Error("Empty detail", "")

	assert.Equal(t, "Login failed: wrong password\n"+
		"No session saved\n"+
		"Session saved: me\n"+
		"Phase: authenticated\n"+
		"Saved sessions\n"+
		"Empty detail\n", buf.String())
	assert.Same(t, &buf, p.Writer())
}

func TestPrinterColorKeepsText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Success("done")
	assert.Contains(t, buf.String(), "done")
}
