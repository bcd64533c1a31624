package document

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Summary returns a one-line summary of the document
func (d Document) Summary() string {
	return fmt.Sprintf("Agent %s:%d, %d servers, %d proxies, file share %s",
		d.Agent.Host, d.Agent.Port, len(d.Servers), len(d.Proxies), onOff(d.FileShare.Enabled))
}

// FormatAgent returns the agent section
func (d Document) FormatAgent() string {
	var b strings.Builder

	b.WriteString("=== Agent ===\n")
	b.WriteString(fmt.Sprintf("Host: %s\n", d.Agent.Host))
	b.WriteString(fmt.Sprintf("Port: %d\n", d.Agent.Port))

	return b.String()
}

// FormatServers returns the server list
func (d Document) FormatServers() string {
	var b strings.Builder

	b.WriteString("=== Servers ===\n")
	if len(d.Servers) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	for i, s := range d.Servers {
		b.WriteString(fmt.Sprintf("%2d. %-20s serial %-14s port %d\n", i+1, s.Name, s.Serial, s.Port))
	}

	return b.String()
}

// FormatFileShare returns the file share section. The password is masked.
func (d Document) FormatFileShare() string {
	fs := d.FileShare
	var b strings.Builder

	b.WriteString("=== File Share ===\n")
	b.WriteString(fmt.Sprintf("Enabled:            %v\n", fs.Enabled))
	b.WriteString(fmt.Sprintf("Server:             %s\n", fs.Server))
	b.WriteString(fmt.Sprintf("Service:            %s\n", fs.Service))
	b.WriteString(fmt.Sprintf("Root:               %s\n", fs.Root))
	b.WriteString(fmt.Sprintf("Username:           %s\n", fs.Username))
	b.WriteString(fmt.Sprintf("Password:           %s\n", mask(fs.Password)))
	b.WriteString(fmt.Sprintf("Sync Interval:      %gs\n", fs.IntervalInSeconds))
	b.WriteString(fmt.Sprintf("Reconnect Interval: %gs\n", fs.ReconnectInterval))

	return b.String()
}

// FormatCompact returns a compact multi-line format suitable for terminal display
func (d Document) FormatCompact() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Agent:      %s:%d\n", d.Agent.Host, d.Agent.Port))
	b.WriteString(fmt.Sprintf("Servers:    %d\n", len(d.Servers)))
	b.WriteString(fmt.Sprintf("Proxies:    %d\n", len(d.Proxies)))
	b.WriteString(fmt.Sprintf("File Share: %s (%s/%s)\n", onOff(d.FileShare.Enabled), d.FileShare.Server, d.FileShare.Service))

	return b.String()
}

// FormatDetailed returns every section, proxies ordered by key.
func (d Document) FormatDetailed(key SortKey) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(d.FormatAgent())
	b.WriteString("\n")
	b.WriteString(d.FormatServers())
	b.WriteString("\n")
	b.WriteString("=== Proxies ===\n")
	b.WriteString(FormatProxyTable(SortProxies(d.Proxies, key)))
	b.WriteString("\n")
	b.WriteString(d.FormatFileShare())

	return b.String()
}

// FormatProxyTable renders a proxy view as an aligned table. The # column is
// the canonical position, which is what delete and update address.
func FormatProxyTable(view []IndexedProxy) string {
	if len(view) == 0 {
		return "(none)\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tLOCATION\tPORT\tORIGIN\tALIAS\tAUTO\tRECONNECT")
	for _, ip := range view {
		p := ip.Proxy
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%v\t%gs\n",
			ip.Index, p.Name, p.Location, p.Port, p.Origin, p.Alias, p.AutoConnect, p.ReconnectInterval)
	}
	_ = w.Flush()

	return b.String()
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func mask(s string) string {
	if s == "" {
		return "(not set)"
	}
	return strings.Repeat("•", 8)
}
