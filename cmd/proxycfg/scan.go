package main

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/muurk/proxycfg/internal/discovery"
	"github.com/muurk/proxycfg/internal/ui"
)

var (
	scanTimeout int
	scanMatch   string
	scanNoSave  bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default from settings)")
	scanCmd.Flags().StringVar(&scanMatch, "match", "", "Only list agents whose name contains this text")
	scanCmd.Flags().BoolVar(&scanNoSave, "no-save", false, "List agents without asking which one to use")
}

// scanCmd discovers agents on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for agents on the local network",
	Long: `Scan for agents advertising an HTTP service over mDNS/DNS-SD.

On a terminal you can pick one of the agents found; its URL is saved as the
default server for later commands.`,
	Example: `  proxycfg scan
  proxycfg scan --timeout 10 --match proxy
  proxycfg scan --no-save`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner()
	scanner.Match = scanMatch
	switch {
	case scanTimeout > 0:
		scanner.Timeout = time.Duration(scanTimeout) * time.Second
	case settings.Preferences.DiscoverTimeout > 0:
		scanner.Timeout = time.Duration(settings.Preferences.DiscoverTimeout) * time.Second
	}

	stop := startSpinner(fmt.Sprintf("Scanning for agents (timeout: %s)...", scanner.Timeout))
	agents, err := scanner.Scan(cmd.Context())
	stop()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	p := ui.NewPrinter(nil)
	if len(agents) == 0 {
		p.PrintWarning("No agents found", []ui.Detail{
			{Key: "Service", Value: discovery.ServiceType},
			{Key: "Hint", Value: "try a longer --timeout or pass --server"},
		})
		return nil
	}

	fmt.Printf("Found %d agent(s):\n\n", len(agents))
	for i, a := range agents {
		fmt.Printf("%d. %s\n", i+1, a.Instance)
		fmt.Printf("   URL:      %s\n", a.BaseURL())
		fmt.Printf("   Hostname: %s\n", a.Hostname)
		if len(a.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", a.Metadata)
		}
		fmt.Println()
	}

	if scanNoSave || !ui.IsTerminal() {
		return nil
	}

	const skip = "Keep current server"
	options := []string{skip}
	for _, a := range agents {
		options = append(options, a.String())
	}

	var choice string
	prompt := &survey.Select{
		Message: "Use which agent by default?",
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return err
	}
	if choice == skip {
		return nil
	}

	for _, a := range agents {
		if a.String() == choice {
			settings.Server = a.BaseURL()
			if err := settings.Save(); err != nil {
				return err
			}
			p.PrintSuccess("Default server saved", []ui.Detail{
				{Key: "Server", Value: settings.Server},
				{Key: "Settings", Value: settings.Path()},
			})
		}
	}
	return nil
}
