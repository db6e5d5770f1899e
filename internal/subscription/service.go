// Package subscription orchestrates subscriber registration and confirmation.
package subscription

import (
	"context"
	"time"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/mailer"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/store"
	"github.com/ignite/newsletter/internal/token"
)

// Service implements the subscribe/confirm workflow over the subscription
// store and an outbound mailer.
type Service struct {
	store    *store.SubscriptionStore
	mailer   mailer.Mailer
	baseURL  string
	newToken func() (string, error)
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTokenSource overrides the token generator, used by tests.
func WithTokenSource(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a subscription service. baseURL is the public origin embedded
// in confirmation links.
func New(st *store.SubscriptionStore, m mailer.Mailer, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:    st,
		mailer:   m,
		baseURL:  baseURL,
		newToken: token.New,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewSubscriber carries the raw form input of a subscribe request.
type NewSubscriber struct {
	Email string
	Name  string
}

// Subscribe validates the submitted identity, persists a pending subscriber
// and a fresh confirmation token in one transaction, then dispatches the
// confirmation email after commit.
//
// Re-subscribing an existing email (pending or confirmed) does not create a
// second subscriber row; it issues another independently valid token for the
// same subscriber.
//
// A failed email dispatch is still reported as an error even though the
// subscriber and token are already committed: persisted at least once,
// delivered best effort, never retried here.
func (s *Service) Subscribe(ctx context.Context, req NewSubscriber) error {
	email, err := domain.NewSubscriberEmail(req.Email)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	name, err := domain.NewSubscriberName(req.Name)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return infraErr(OpBeginTx, err)
	}
	// No-op once committed; guarantees rollback on every other exit path.
	defer tx.Rollback()

	subID, found, err := tx.FindSubscriberIDByEmail(ctx, email.String())
	if err != nil {
		return infraErr(OpFindSubscriber, err)
	}
	if !found {
		sub := domain.NewSubscriber(email, name, s.now())
		subID, err = tx.InsertSubscriber(ctx, sub)
		if err != nil {
			return infraErr(OpInsertSubscriber, err)
		}
	}

	confirmationToken, err := s.newToken()
	if err != nil {
		return infraErr(OpGenerateToken, err)
	}
	if err := tx.InsertToken(ctx, confirmationToken, subID); err != nil {
		return infraErr(OpStoreToken, err)
	}
	if err := tx.Commit(); err != nil {
		return infraErr(OpCommitTx, err)
	}

	link := mailer.ConfirmationLink(s.baseURL, confirmationToken)
	htmlBody, textBody := mailer.ConfirmationBodies(link)
	if err := s.mailer.Send(ctx, email.String(), mailer.ConfirmationSubject, htmlBody, textBody); err != nil {
		logger.Error("confirmation email dispatch failed after commit",
			"email", email.String(), "id", subID.String(), "error", err)
		return infraErr(OpSendEmail, err)
	}

	logger.Info("subscription request accepted",
		"email", email.String(), "id", subID.String())
	return nil
}
