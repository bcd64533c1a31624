package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/proxycfg/internal/logging"
)

const (
	// ServiceType is the mDNS service type agents are browsed under
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for agent discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an entry advertises port 0
	DefaultPort = 80
)

// Scanner handles mDNS agent discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration

	// Match, when set, keeps only entries whose instance name or hostname
	// contains it (case-insensitive)
	Match string
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses for agents until the timeout expires or ctx is cancelled.
// Entries are deduplicated by address and sorted by instance name.
func (s *Scanner) Scan(ctx context.Context) ([]*Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu     sync.Mutex
		agents = make(map[string]*Agent)
	)

	go func() {
		for entry := range entries {
			agent := parseServiceEntry(entry, s.Match)
			if agent == nil {
				continue
			}
			logging.Debug("Discovered agent", zap.String("instance", agent.Instance), zap.String("url", agent.BaseURL()))
			mu.Lock()
			agents[agent.BaseURL()] = agent
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	out := make([]*Agent, 0, len(agents))
	for _, a := range agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Instance != out[j].Instance {
			return out[i].Instance < out[j].Instance
		}
		return out[i].BaseURL() < out[j].BaseURL()
	})
	return out, nil
}

// parseServiceEntry converts a zeroconf service entry to an Agent.
// Returns nil when the entry has no address or does not match.
func parseServiceEntry(entry *zeroconf.ServiceEntry, match string) *Agent {
	if entry == nil {
		return nil
	}

	if match != "" {
		m := strings.ToLower(match)
		if !strings.Contains(strings.ToLower(entry.Instance), m) &&
			!strings.Contains(strings.ToLower(entry.HostName), m) {
			return nil
		}
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Agent{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
