// Package api is the HTTP client for the proxy agent's configuration
// service.
//
// The agent exposes the configuration document at /cfg, token issuing at
// /api/login and /api/register, log file downloads at /download-*, and the
// live log websocket at /logging. Every request carries a bearer token once
// one has been obtained, and a fresh X-Request-ID so client and agent logs
// can be correlated.
//
// The client never retries. Failures are returned as *APIError values that
// classify the failure (network, timeout, auth, HTTP, parse) and carry the
// agent's "detail" text when one was sent.
//
// # Usage Example
//
//	client := api.NewClient("http://10.0.0.2:8080")
//	tok, err := client.Login(ctx, "ops@example.com", "hunter22")
//	if err != nil {
//	    fmt.Println(api.DetailText(err))
//	    return
//	}
//	client.SetToken(tok.AccessToken)
//
//	doc, err := client.GetConfig(ctx)
package api
