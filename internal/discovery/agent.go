package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Agent represents an HTTP service discovered on the network
type Agent struct {
	// Instance is the advertised service instance name (e.g., "proxy-agent")
	Instance string

	// Hostname is the mDNS hostname (e.g., "gateway.local.")
	Hostname string

	// IP is the advertised address, IPv4 preferred
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains the TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the agent answered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the agent
func (a *Agent) String() string {
	return fmt.Sprintf("%s (%s) at %s", a.Instance, strings.TrimSuffix(a.Hostname, "."), a.BaseURL())
}

// BaseURL returns the HTTP base URL for the agent
func (a *Agent) BaseURL() string {
	u := "http://" + net.JoinHostPort(a.IP, strconv.Itoa(a.Port))
	if p := strings.Trim(a.Metadata["path"], "/"); p != "" {
		u += "/" + p
	}
	return u
}
