// Package discovery finds proxy agents on the local network with mDNS.
//
// Agents are plain HTTP services, so the scanner browses "_http._tcp" in the
// "local." domain and reports every responder, optionally narrowed by a
// case-insensitive match on the instance name or hostname. A "path" TXT
// record, when present, is appended to the agent's base URL.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Match = "proxy"
//	agents, err := scanner.Scan(ctx)
//	for _, a := range agents {
//	    fmt.Println(a.Instance, a.BaseURL())
//	}
package discovery
