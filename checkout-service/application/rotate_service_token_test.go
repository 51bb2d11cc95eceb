package application

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/commercium/checkout-system/checkout-service/mocks"
	"github.com/commercium/checkout-system/shared/auth"
	"github.com/commercium/checkout-system/shared/events"
)

func TestRotateServiceToken_Execute(t *testing.T) {
	expiresAt := time.Now().Add(15 * time.Minute)

	t.Run("rotates a single service", func(t *testing.T) {
		rotator := mocks.NewMockTokenRotator(t)
		publisher := mocks.NewMockPublisher(t)

		rotator.EXPECT().Rotate(mock.Anything, "checkout").
			Return(&auth.ServiceToken{Service: "checkout", ExpiresAt: expiresAt, Value: "signed"}, nil).Once()
		publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(evt *events.Event) bool {
			data, ok := evt.Data.(TokenRotationData)
			return evt.EventType == events.ServiceTokenRotatedEvent && ok && data.Service == "checkout"
		})).Return(nil).Once()

		uc := NewRotateServiceToken(rotator, publisher)
		response, err := uc.Execute(context.Background(), &RotateServiceTokenCommand{Service: "checkout"})

		require.NoError(t, err)
		assert.Equal(t, "checkout", response.Service)
		assert.Equal(t, expiresAt, response.ExpiresAt)
	})

	t.Run("rotates all services", func(t *testing.T) {
		rotator := mocks.NewMockTokenRotator(t)
		publisher := mocks.NewMockPublisher(t)

		rotator.EXPECT().RotateAll(mock.Anything).Return(nil).Once()
		publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(evt *events.Event) bool {
			data, ok := evt.Data.(TokenRotationData)
			return ok && data.Service == "*"
		})).Return(nil).Once()

		uc := NewRotateServiceToken(rotator, publisher)
		response, err := uc.Execute(context.Background(), &RotateServiceTokenCommand{})

		require.NoError(t, err)
		assert.Empty(t, response.Service)
	})

	t.Run("unknown service surfaces the registry error", func(t *testing.T) {
		rotator := mocks.NewMockTokenRotator(t)
		publisher := mocks.NewMockPublisher(t)

		rotator.EXPECT().Rotate(mock.Anything, "ghost").
			Return(nil, errors.Wrap(auth.ErrUnknownService, "ghost")).Once()

		uc := NewRotateServiceToken(rotator, publisher)
		_, err := uc.Execute(context.Background(), &RotateServiceTokenCommand{Service: "ghost"})

		assert.ErrorIs(t, err, auth.ErrUnknownService)
	})

	t.Run("rotation event never carries a token value", func(t *testing.T) {
		rotator := mocks.NewMockTokenRotator(t)
		publisher := mocks.NewMockPublisher(t)

		rotator.EXPECT().Rotate(mock.Anything, "checkout").
			Return(&auth.ServiceToken{Service: "checkout", ExpiresAt: expiresAt, Value: "super-secret"}, nil).Once()
		publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(evt *events.Event) bool {
			_, ok := evt.Data.(TokenRotationData)
			return ok
		})).Return(nil).Once()

		uc := NewRotateServiceToken(rotator, publisher)
		_, err := uc.Execute(context.Background(), &RotateServiceTokenCommand{Service: "checkout"})
		require.NoError(t, err)
	})
}
