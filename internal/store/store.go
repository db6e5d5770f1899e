// Package store persists subscribers and confirmation tokens in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/newsletter/internal/domain"
)

// ErrTokenNotFound reports that no subscriber matches a confirmation token.
var ErrTokenNotFound = errors.New("confirmation token not found")

// SubscriptionStore provides database operations for subscribers and tokens.
type SubscriptionStore struct {
	db *sql.DB
}

// New creates a Postgres-backed subscription store.
func New(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Tx scopes subscriber and token writes to a single database transaction.
// Rollback is safe to defer unconditionally: it is a no-op after Commit.
type Tx struct {
	tx *sql.Tx
}

// Begin opens a transaction bound to ctx; cancelling the request context
// before Commit aborts the transaction.
func (s *SubscriptionStore) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit makes the transaction's writes visible.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction. Calling it after Commit is a no-op.
func (t *Tx) Rollback() {
	_ = t.tx.Rollback()
}

// FindSubscriberIDByEmail looks up a subscriber by email inside the
// transaction. The second return value reports whether a row was found.
func (t *Tx) FindSubscriberIDByEmail(ctx context.Context, email string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM subscriptions WHERE email = $1`, email).Scan(&id)
	if err == sql.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find subscriber by email: %w", err)
	}
	return id, true, nil
}

// InsertSubscriber stores a new pending subscriber and returns its ID.
// Email uniqueness is enforced by the subscriptions UNIQUE constraint; when
// a concurrent first-time subscribe wins the race between our lookup and
// this insert, the conflict clause yields no row and we adopt the winner's
// identifier instead.
func (t *Tx) InsertSubscriber(ctx context.Context, sub *domain.Subscriber) (uuid.UUID, error) {
	var id uuid.UUID
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO subscriptions (id, email, name, status, subscribed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`,
		sub.ID, sub.Email, sub.Name, sub.Status, sub.SubscribedAt).Scan(&id)
	if err == sql.ErrNoRows {
		err = t.tx.QueryRowContext(ctx,
			`SELECT id FROM subscriptions WHERE email = $1`, sub.Email).Scan(&id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolve subscriber after conflict: %w", err)
		}
		return id, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert subscriber: %w", err)
	}
	return id, nil
}

// InsertToken stores a confirmation token bound to a subscriber. Every
// subscribe request stores a fresh token, so one subscriber may hold several
// outstanding tokens at once.
func (t *Tx) InsertToken(ctx context.Context, token string, subscriberID uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)`,
		token, subscriberID)
	if err != nil {
		return fmt.Errorf("insert confirmation token: %w", err)
	}
	return nil
}

// GetSubscriberByEmail reads a subscriber outside any transaction.
func (s *SubscriptionStore) GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	sub := &domain.Subscriber{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, status, subscribed_at
		FROM subscriptions WHERE email = $1`, email).Scan(
		&sub.ID, &sub.Email, &sub.Name, &sub.Status, &sub.SubscribedAt)
	if err != nil {
		return nil, fmt.Errorf("get subscriber by email: %w", err)
	}
	return sub, nil
}

// FindSubscriberIDByToken resolves a confirmation token to the subscriber it
// authorizes. Returns ErrTokenNotFound when no row matches.
func (s *SubscriptionStore) FindSubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT subscriber_id FROM subscription_tokens
		WHERE subscription_token = $1`, token).Scan(&id)
	if err == sql.ErrNoRows {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("find subscriber by token: %w", err)
	}
	return id, nil
}

// ConfirmSubscriber flips a subscriber to confirmed. A single-row update,
// idempotent: confirming an already-confirmed subscriber changes nothing.
func (s *SubscriptionStore) ConfirmSubscriber(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = $1 WHERE id = $2`,
		domain.StatusConfirmed, id)
	if err != nil {
		return fmt.Errorf("confirm subscriber: %w", err)
	}
	return nil
}
