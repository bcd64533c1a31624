package document

import (
	"encoding/json"
	"fmt"
)

// Document is the complete configuration served by the agent at GET /cfg and
// accepted back, whole, by POST /cfg.
type Document struct {
	Agent     Agent     `json:"agent" yaml:"agent"`
	Servers   []Server  `json:"servers" yaml:"servers"`
	Proxies   []Proxy   `json:"proxies" yaml:"proxies"`
	FileShare FileShare `json:"fileShare" yaml:"fileShare"`
}

// Agent is the address the agent itself listens on.
type Agent struct {
	Host string `json:"host" yaml:"host"` // Bind address (e.g., "0.0.0.0")
	Port int    `json:"port" yaml:"port"`
}

// Server is a device endpoint the agent accepts connections from.
type Server struct {
	Serial string `json:"serial" yaml:"serial"`
	Port   int    `json:"port" yaml:"port"`
	Name   string `json:"name" yaml:"name"`
}

// Proxy is one forwarding rule: the agent listens on Port and relays traffic
// to Origin.
type Proxy struct {
	Origin            string  `json:"origin" yaml:"origin"` // host:port of the upstream
	Port              int     `json:"port" yaml:"port"`
	Name              string  `json:"name" yaml:"name"`
	AutoConnect       bool    `json:"auto_connect" yaml:"auto_connect"`
	ReconnectInterval float64 `json:"reconnect_interval" yaml:"reconnect_interval"` // Seconds
	Alias             string  `json:"alias" yaml:"alias"`
	Location          string  `json:"location" yaml:"location"`
}

// FileShare holds the network share sync settings.
type FileShare struct {
	Server            string  `json:"server" yaml:"server"`
	Username          string  `json:"username" yaml:"username"`
	Password          string  `json:"password" yaml:"password"`
	Service           string  `json:"service" yaml:"service"` // Share name on the server
	Root              string  `json:"root" yaml:"root"`       // Directory inside the share
	IntervalInSeconds float64 `json:"interval_in_seconds" yaml:"interval_in_seconds"`
	ReconnectInterval float64 `json:"reconnect_interval" yaml:"reconnect_interval"`
	Enabled           bool    `json:"enabled" yaml:"enabled"`
}

// Placeholder values written by Add. The operator is expected to overwrite
// them before saving.
const (
	NewServerSerial = "NEW_SERIAL"
	NewServerName   = "NEW_NAME"

	NewProxyOrigin            = "127.0.0.1:1001"
	NewProxyPort              = 1001
	NewProxyName              = "PROXY_NEW"
	NewProxyReconnectInterval = 10
	NewProxyLocation          = "NEW_LOCATION"
	NewProxyAlias             = "NEW_ALIAS"
)

// NewServer returns the placeholder server appended by Add.
func NewServer() Server {
	return Server{
		Serial: NewServerSerial,
		Port:   0,
		Name:   NewServerName,
	}
}

// NewProxy returns the placeholder proxy appended by Add.
func NewProxy() Proxy {
	return Proxy{
		Origin:            NewProxyOrigin,
		Port:              NewProxyPort,
		Name:              NewProxyName,
		AutoConnect:       false,
		ReconnectInterval: NewProxyReconnectInterval,
		Location:          NewProxyLocation,
		Alias:             NewProxyAlias,
	}
}

// Default returns a structurally complete document with empty lists. It is
// what an editor holds before the first successful load.
func Default() Document {
	return Document{
		Agent:   Agent{Host: "0.0.0.0", Port: 80},
		Servers: []Server{},
		Proxies: []Proxy{},
		FileShare: FileShare{
			IntervalInSeconds: 5,
			ReconnectInterval: 10,
		},
	}
}

// Decode parses a document received from the agent. Missing list sections
// are normalised to empty slices so callers never see a nil list.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	doc.normalize()
	return doc, nil
}

// Encode serialises the document exactly as it is posted back to the agent.
func (d Document) Encode() ([]byte, error) {
	d.normalize()
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return data, nil
}

func (d *Document) normalize() {
	if d.Servers == nil {
		d.Servers = []Server{}
	}
	if d.Proxies == nil {
		d.Proxies = []Proxy{}
	}
}
