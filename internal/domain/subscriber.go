package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber status values. The transition is monotonic: a subscriber moves
// from pending_confirmation to confirmed and never back.
const (
	StatusPendingConfirmation = "pending_confirmation"
	StatusConfirmed           = "confirmed"
)

// Subscriber represents a newsletter subscriber.
type Subscriber struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// NewSubscriber builds a pending subscriber from validated identity values
// with a freshly generated identifier.
func NewSubscriber(email SubscriberEmail, name SubscriberName, now time.Time) *Subscriber {
	return &Subscriber{
		ID:           uuid.New(),
		Email:        email.String(),
		Name:         name.String(),
		Status:       StatusPendingConfirmation,
		SubscribedAt: now.UTC(),
	}
}
