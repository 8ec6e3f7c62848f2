package gateway

import (
	"context"

	"github.com/rahul/rendezvous/internal/schema"
)

// PlanService is the planning pipeline as seen from a gateway.
type PlanService interface {
	CreatePlan(ctx context.Context, req schema.PlanRequest) schema.PlanResponse
}

// Messenger defines the interface for communication gateways (Telegram, Discord, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
