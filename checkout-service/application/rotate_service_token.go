package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/events"
	"github.com/commercium/checkout-system/shared/models"
)

// RotateServiceTokenCommand represents the command to rotate service tokens.
// An empty Service rotates every registered identity.
type RotateServiceTokenCommand struct {
	Service string `json:"service"`
}

// RotateServiceTokenResponse represents the response after a rotation
type RotateServiceTokenResponse struct {
	Service   string    `json:"service,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// TokenRotationData is the audit payload of a rotation event. Token values
// never appear in events.
type TokenRotationData struct {
	Service string `json:"service"`
}

// RotateServiceToken use case
type RotateServiceToken struct {
	rotator   TokenRotator
	publisher events.Publisher
}

// NewRotateServiceToken creates a new RotateServiceToken use case
func NewRotateServiceToken(rotator TokenRotator, publisher events.Publisher) *RotateServiceToken {
	return &RotateServiceToken{rotator: rotator, publisher: publisher}
}

// Execute rotates one or all service tokens and records the rotation.
func (uc *RotateServiceToken) Execute(ctx context.Context, cmd *RotateServiceTokenCommand) (*RotateServiceTokenResponse, error) {
	if cmd.Service == "" {
		if err := uc.rotator.RotateAll(ctx); err != nil {
			return nil, err
		}

		event := events.NewEvent(models.GenerateUUID(), events.ServiceTokenRotatedEvent,
			TokenRotationData{Service: "*"})
		if err := uc.publisher.Publish(ctx, event); err != nil {
			return nil, errors.Wrap(err, "failed to publish rotation event")
		}

		return &RotateServiceTokenResponse{}, nil
	}

	token, err := uc.rotator.Rotate(ctx, cmd.Service)
	if err != nil {
		return nil, err
	}

	event := events.NewEvent(models.GenerateUUID(), events.ServiceTokenRotatedEvent,
		TokenRotationData{Service: cmd.Service})
	if err := uc.publisher.Publish(ctx, event); err != nil {
		return nil, errors.Wrap(err, "failed to publish rotation event")
	}

	return &RotateServiceTokenResponse{
		Service:   token.Service,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
