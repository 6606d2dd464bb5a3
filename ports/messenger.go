package ports

import "context"

// Choice is one tagged option presented alongside an outbound message.
// Payload comes back verbatim as the event's choice data.
type Choice struct {
	Label   string
	Payload string
}

// Messenger is the outbound half of the messaging gateway contract.
type Messenger interface {
	// Send delivers text to an external user, optionally with a choice set.
	// Choices are row-major: each inner slice renders as one row.
	Send(ctx context.Context, externalID int64, text string, choices [][]Choice) error
}
