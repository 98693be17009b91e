package client

// Status is the connection state reported to subscribers.
type Status string

const (
	// StatusConnecting is the initial state, before the first handshake
	// resolves either way.
	StatusConnecting Status = "connecting"
	// StatusConnected means the transport is open.
	StatusConnected Status = "connected"
	// StatusReconnecting means a previously working connection dropped and a
	// retry is pending or in flight. Once entered, StatusDisconnected is
	// never reported again.
	StatusReconnecting Status = "reconnecting"
	// StatusDisconnected means no connection has ever succeeded. The UI uses
	// this to distinguish "never worked" from "worked, now retrying".
	StatusDisconnected Status = "disconnected"
)
