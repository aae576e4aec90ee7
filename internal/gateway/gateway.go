package gateway

import "context"

// Messenger defines the interface for communication gateways (Telegram, CLI, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Responder turns one incoming message into one reply. The assistant facade
// implements this; gateways stay free of parsing and execution details.
type Responder interface {
	Handle(ctx context.Context, userID, text string) string
}
