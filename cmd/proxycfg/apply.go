package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/proxycfg/internal/document"
	"github.com/muurk/proxycfg/internal/ui"
)

var assumeYes bool

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// applyCmd replaces the agent configuration with a document from a file
var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Replace the agent configuration with a document file",
	Long: `Send a configuration document to the agent, replacing its whole
configuration. The file may be JSON or YAML, as written by
'proxycfg show --format json' or '--format yaml'. Use '-' to read JSON from
stdin.

The agent keeps no history: the last document sent wins.`,
	Example: `  # Back up, edit, restore
  proxycfg show --format yaml > agent.yaml
  proxycfg apply agent.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	if err := session.Require(); err != nil {
		return err
	}

	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	if !assumeYes && ui.IsTerminal() && args[0] != "-" {
		ok := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Replace the configuration of %s (%s)?", client.BaseURL, doc.Summary()),
		}
		if err := survey.AskOne(prompt, &ok); err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	ctrl := document.NewController(client)
	ctrl.Loaded(doc)

	stop := startSpinner("Saving configuration to " + client.BaseURL + "...")
	err = ctrl.Save(cmd.Context())
	stop()
	if err != nil {
		return reportError("Could not save configuration", err)
	}

	ui.NewPrinter(nil).PrintSuccess("Configuration saved", []ui.Detail{
		{Key: "Agent", Value: client.BaseURL},
		{Key: "Document", Value: ctrl.Document().Summary()},
	})
	return nil
}

// readDocument loads a document file. YAML is chosen by the .yaml or .yml
// extension, everything else is parsed as JSON.
func readDocument(path string) (document.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseDocument(data, filepath.Ext(path))
}

func parseDocument(data []byte, ext string) (document.Document, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		doc := document.Default()
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return document.Document{}, fmt.Errorf("failed to parse YAML document: %w", err)
		}
		return doc, nil
	default:
		return document.Decode(data)
	}
}
