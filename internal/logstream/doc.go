// Package logstream follows the agent's live log channel.
//
// The agent pushes JSON text frames of the form {"type": ..., "message": ...}
// over a websocket at /logging. A Stream dials the channel, decodes each frame
// into the line "[type]message", appends it to a Buffer and publishes the
// change on its Updates channel. A Stream moves through three states:
//
//	connecting -> live -> disconnected
//
// It never reconnects on its own. Callers that want to resume after a drop
// create a new Stream.
package logstream
