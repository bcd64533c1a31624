package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/proxycfg/internal/api"
	"github.com/muurk/proxycfg/internal/document"
	"github.com/muurk/proxycfg/internal/logging"
	"github.com/muurk/proxycfg/internal/logstream"
	"github.com/muurk/proxycfg/internal/tui"
	"github.com/muurk/proxycfg/internal/ui"
)

// Command flags
var (
	outputFormat string
	sortBy       string
	filterText   string
	outputPath   string
	plainLogs    bool
)

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(proxiesCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(downloadCmd)

	showCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json, yaml)")
	proxiesCmd.Flags().StringVar(&sortBy, "sort", "", "Sort key (location, port, name, origin)")
	proxiesCmd.Flags().StringVar(&filterText, "filter", "", "Only show proxies matching this text")
	logsCmd.Flags().BoolVar(&plainLogs, "plain", false, "Disable colored output")
	downloadCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file ('-' for stdout, default <kind>.log)")
}

// errReported is returned after a failure box has been printed so that
// main does not print the error again.
var errReported = errors.New("error already reported")

func reportError(title string, err error) error {
	ui.NewPrinter(os.Stderr).PrintError(title, err, hintLines(err))
	return errReported
}

// hintLines turns api.TroubleshootingHint into box bullet points.
func hintLines(err error) []string {
	var tips []string
	for _, line := range strings.Split(api.TroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
		if line == "" || line == "Troubleshooting:" {
			continue
		}
		tips = append(tips, line)
	}
	return tips
}

// startSpinner shows a spinner on stderr while a request runs. It does
// nothing when stderr is not a terminal.
func startSpinner(suffix string) func() {
	if !ui.IsTerminal() {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}

func preferredSort(flagValue string) (document.SortKey, error) {
	if flagValue != "" {
		return document.ParseSortKey(flagValue)
	}
	key, err := document.ParseSortKey(settings.Preferences.SortBy)
	if err != nil {
		logging.Warn("Ignoring saved sort preference", zap.String("sort_by", settings.Preferences.SortBy))
		return document.DefaultSortKey, nil
	}
	return key, nil
}

// runEditor launches the interactive editor
func runEditor(cmd *cobra.Command, args []string) error {
	sortKey, err := preferredSort("")
	if err != nil {
		return err
	}

	downloadDir, err := os.Getwd()
	if err != nil {
		return err
	}

	opts := tui.Options{
		Client:         client,
		Session:        session,
		Authenticator:  newAuthenticator(),
		SortKey:        sortKey,
		LogBufferLimit: settings.Preferences.LogBufferLimit,
		DownloadDir:    downloadDir,
	}

	watcher, err := session.Watch()
	if err != nil {
		logging.Warn("Token changes from other processes will not be followed", zap.Error(err))
	} else {
		defer func() { _ = watcher.Close() }()
		opts.TokenChanges = watcher.Changes()
	}

	p := tea.NewProgram(tui.NewAppModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor error: %w", err)
	}
	return nil
}

// loadConfig fetches the document into a controller, the same way the
// editor starts.
func loadConfig(ctx context.Context) (*document.Controller, error) {
	if err := session.Require(); err != nil {
		return nil, err
	}
	ctrl := document.NewController(client)
	stop := startSpinner("Fetching configuration from " + client.BaseURL + "...")
	err := ctrl.Load(ctx)
	stop()
	if err != nil {
		return nil, reportError("Could not fetch configuration", err)
	}
	return ctrl, nil
}

// showCmd displays the agent configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the agent configuration",
	Long: `Fetch the configuration document from the agent and print it.

The detailed format prints every section. The json and yaml formats print
the whole document for scripting.`,
	Example: `  # Detailed view
  proxycfg show

  # One line per section
  proxycfg show --format compact

  # JSON for scripting
  proxycfg show --format json --server http://10.0.0.2:8080`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	ctrl, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	return writeDocument(os.Stdout, ctrl.Document(), outputFormat)
}

func writeDocument(w io.Writer, doc document.Document, format string) error {
	switch format {
	case "compact":
		_, err := fmt.Fprintln(w, doc.FormatCompact())
		return err
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case "detailed", "":
		key, err := preferredSort("")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, doc.FormatDetailed(key))
		return err
	default:
		return fmt.Errorf("unknown format %q (valid: detailed, compact, json, yaml)", format)
	}
}

// proxiesCmd lists proxies with the editor's sort and filter
var proxiesCmd = &cobra.Command{
	Use:   "proxies",
	Short: "List proxies",
	Long: `List the proxies of the agent as a table.

Sorting and filtering work like the editor's proxy view: the filter matches
location, name, origin and port, case-insensitively. The # column is the
position of the proxy in the document.`,
	Example: `  proxycfg proxies --sort port
  proxycfg proxies --filter oslo`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := preferredSort(sortBy)
		if err != nil {
			return err
		}
		ctrl, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		ctrl.SetSort(key)
		ctrl.SetFilter(filterText)
		view := ctrl.VisibleProxies()
		if len(view) == 0 {
			fmt.Println("No proxies match.")
			return nil
		}
		fmt.Print(document.FormatProxyTable(view))
		return nil
	},
}

// logsCmd follows the live log channel
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Follow the agent's live log",
	Long: `Connect to the agent's log channel and print each log line as it
arrives. The command ends when the agent closes the channel or on Ctrl+C.
It does not reconnect.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	stateColor  = color.New(color.FgHiBlack)
	levelColors = map[string]*color.Color{
		"DEBUG":    color.New(color.FgHiBlack),
		"INFO":     color.New(color.FgCyan),
		"WARNING":  color.New(color.FgYellow),
		"WARN":     color.New(color.FgYellow),
		"ERROR":    color.New(color.FgRed),
		"CRITICAL": color.New(color.FgRed, color.Bold),
	}
)

// printLogLine colors a "[type]message" line by its type.
func printLogLine(w io.Writer, line string) {
	if end := strings.Index(line, "]"); strings.HasPrefix(line, "[") && end > 0 {
		if c, ok := levelColors[strings.ToUpper(line[1:end])]; ok {
			_, _ = c.Fprintln(w, line)
			return
		}
	}
	_, _ = fmt.Fprintln(w, line)
}

func runLogs(cmd *cobra.Command, args []string) error {
	if err := session.Require(); err != nil {
		return err
	}
	if plainLogs {
		color.NoColor = true
	}

	url, err := client.LogStreamURL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stream := logstream.New(url, client.AuthHeader(), settings.Preferences.LogBufferLimit)
	stream.Start(ctx)
	defer func() { _ = stream.Close() }()

	for u := range stream.Updates() {
		switch u.Kind {
		case logstream.UpdateState:
			_, _ = stateColor.Fprintf(os.Stderr, "-- %s (%s) --\n", u.State, url)
		case logstream.UpdateLine:
			printLogLine(os.Stdout, u.Line)
		}
	}
	return nil
}

// downloadCmd saves one of the agent's log files
var downloadCmd = &cobra.Command{
	Use:       "download <share|proxy|web>",
	Short:     "Download a log file from the agent",
	ValidArgs: []string{string(api.LogShare), string(api.LogProxy), string(api.LogWeb)},
	Example: `  proxycfg download proxy
  proxycfg download web -o /tmp/web.log
  proxycfg download share -o - | less`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	kind, err := api.ParseLogKind(args[0])
	if err != nil {
		return err
	}
	if err := session.Require(); err != nil {
		return err
	}

	if outputPath == "-" {
		_, err := client.Download(cmd.Context(), kind, os.Stdout)
		if err != nil {
			return reportError("Download failed", err)
		}
		return nil
	}

	path := outputPath
	if path == "" {
		path = kind.FileName()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	stop := startSpinner(fmt.Sprintf("Downloading %s log...", kind))
	n, err := client.Download(cmd.Context(), kind, f)
	stop()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return reportError("Download failed", err)
	}

	ui.NewPrinter(nil).PrintSuccess("Log saved", []ui.Detail{
		{Key: "Log", Value: string(kind)},
		{Key: "File", Value: path},
		{Key: "Size", Value: fmt.Sprintf("%d bytes", n)},
	})
	return nil
}
