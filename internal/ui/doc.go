// Package ui renders the styled output of the non-interactive proxycfg
// commands.
//
// Commands such as show, download and scan print once and exit. They use a
// Printer to write a command header, then a success or failure box:
//
//	p := ui.NewPrinter(nil)
//	p.PrintHeader("Download", "proxycfg download proxy", []ui.Detail{
//	    {Key: "Agent", Value: client.BaseURL},
//	})
//	p.PrintSuccess("Log saved", []ui.Detail{{Key: "File", Value: path}})
//
// Failure boxes include troubleshooting tips. For API errors the tips come
// from api.TroubleshootingHint.
//
// zap logging stays silent unless PROXYCFG_LOG_LEVEL or --log-level is set,
// so that this output is not interleaved with log lines.
package ui
