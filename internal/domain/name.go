package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength caps subscriber display names at 256 characters.
const MaxNameLength = 256

// forbiddenNameChars blocks characters commonly used in injection payloads.
// This is a denial-of-injection measure, not full sanitization.
const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a display name that passed validation.
type SubscriberName struct {
	value string
}

// NewSubscriberName validates a raw display name. It rejects empty or
// whitespace-only input, input longer than MaxNameLength characters, and
// input containing any forbidden character.
func NewSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, fmt.Errorf("name must not be empty")
	}
	if utf8.RuneCountInString(raw) > MaxNameLength {
		return SubscriberName{}, fmt.Errorf("name must not exceed %d characters", MaxNameLength)
	}
	if strings.ContainsAny(raw, forbiddenNameChars) {
		return SubscriberName{}, fmt.Errorf("name contains a forbidden character")
	}
	return SubscriberName{value: raw}, nil
}

func (n SubscriberName) String() string { return n.value }
