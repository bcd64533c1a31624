package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/config"
	"github.com/muurk/proxycfg/internal/document"
)

func TestWriteDocumentFormats(t *testing.T) {
	settings = config.NewSettings()
	doc := document.Default()
	doc.Proxies = []document.Proxy{{Name: "kitchen", Port: 9002, Location: "Oslo"}}

	var buf bytes.Buffer
	if err := writeDocument(&buf, doc, "json"); err != nil {
		t.Fatalf("json: %v", err)
	}
	var fromJSON document.Document
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if len(fromJSON.Proxies) != 1 || fromJSON.Proxies[0].Name != "kitchen" {
		t.Errorf("json proxies = %+v", fromJSON.Proxies)
	}

	buf.Reset()
	if err := writeDocument(&buf, doc, "yaml"); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var fromYAML document.Document
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml output does not parse: %v", err)
	}
	if fromYAML.Agent.Port != doc.Agent.Port {
		t.Errorf("yaml agent port = %d, want %d", fromYAML.Agent.Port, doc.Agent.Port)
	}

	buf.Reset()
	if err := writeDocument(&buf, doc, "detailed"); err != nil {
		t.Fatalf("detailed: %v", err)
	}
	if !strings.Contains(buf.String(), "kitchen") {
		t.Errorf("detailed output missing proxy:\n%s", buf.String())
	}

	if err := writeDocument(&buf, doc, "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestPrintLogLine(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	var buf bytes.Buffer
	printLogLine(&buf, "[ERROR]upstream down")
	printLogLine(&buf, "no type")
	if got := buf.String(); got != "[ERROR]upstream down\nno type\n" {
		t.Errorf("output = %q", got)
	}
}

func TestHintLines(t *testing.T) {
	err := &api.APIError{Type: api.ErrTypeConnectionRefused, Message: "refused"}
	tips := hintLines(err)
	if len(tips) == 0 {
		t.Fatal("no tips for a refused connection")
	}
	for _, tip := range tips {
		if strings.HasPrefix(tip, "•") || tip == "Troubleshooting:" {
			t.Errorf("tip not cleaned: %q", tip)
		}
	}
}
