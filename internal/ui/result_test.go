package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrinterSuccessKeepsDetailOrder(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(80)

	p.PrintSuccess("Log saved", []Detail{
		{Key: "File", Value: "proxy.log"},
		{Key: "Size", Value: "12 bytes"},
	})

	out := buf.String()
	for _, want := range []string{SuccessMarker, "Log saved", "proxy.log", "12 bytes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "proxy.log") > strings.Index(out, "12 bytes") {
		t.Error("details printed out of order")
	}
}

func TestPrinterError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(80)

	p.PrintError("Download failed", errors.New("agent refused connection"), []string{"Check the agent address"})

	out := buf.String()
	for _, want := range []string{FailureMarker, "Download failed", "agent refused connection", "Troubleshooting:", "Check the agent address"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader("download", "proxycfg download proxy", []Detail{{Key: "Agent", Value: "http://10.0.0.2"}}, 70)
	for _, want := range []string{"DOWNLOAD", "proxycfg download proxy", "Agent:", "http://10.0.0.2"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
}

func TestSetWidthClamps(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}).SetWidth(10)
	if p.Width() != MinTerminalWidth {
		t.Errorf("Width() = %d, want %d", p.Width(), MinTerminalWidth)
	}
}
