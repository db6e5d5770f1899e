package subscription

import (
	"context"
	"errors"
	"strings"

	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/store"
)

// Confirm redeems a confirmation token and promotes the referenced
// subscriber to confirmed. Confirming an already-confirmed subscriber is not
// an error. Nothing is mutated when the token is missing or unknown.
func (s *Service) Confirm(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return ErrMissingToken
	}

	subID, err := s.store.FindSubscriberIDByToken(ctx, rawToken)
	if errors.Is(err, store.ErrTokenNotFound) {
		return ErrUnknownToken
	}
	if err != nil {
		return infraErr(OpFindToken, err)
	}

	if err := s.store.ConfirmSubscriber(ctx, subID); err != nil {
		return infraErr(OpConfirmSubscriber, err)
	}

	logger.Info("subscription confirmed", "id", subID.String())
	return nil
}
