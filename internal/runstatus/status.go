package runstatus

import "strings"

// Backend event stream states as shown in the status bar.
const (
	Connecting   = "Connecting"
	Connected    = "Connected"
	Reconnecting = "Reconnecting"
	Disconnected = "Disconnected"
	// DisconnectedRefused means the backend rejected the event stream
	// request with a client error; reconnecting will not help.
	DisconnectedRefused = "Disconnected (refused)"
)

const (
	KeyConnecting          = "connecting"
	KeyConnected           = "connected"
	KeyReconnecting        = "reconnecting"
	KeyDisconnected        = "disconnected"
	KeyDisconnectedRefused = "disconnected (refused)"
)

func Key(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
