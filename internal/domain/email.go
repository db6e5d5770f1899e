package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// SubscriberEmail is an email address that passed validation.
type SubscriberEmail struct {
	value string
}

// NewSubscriberEmail validates a raw email address. It accepts bare
// RFC 5322 addr-spec values (local@domain with a dotted domain) and rejects
// everything else, including display-name forms like "Jane <jane@x.com>".
// No MX or deliverability check is performed.
func NewSubscriberEmail(raw string) (SubscriberEmail, error) {
	if raw == "" {
		return SubscriberEmail{}, fmt.Errorf("email must not be empty")
	}

	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return SubscriberEmail{}, fmt.Errorf("%q is not a valid email address", raw)
	}

	at := strings.LastIndex(raw, "@")
	if at < 1 || !strings.Contains(raw[at+1:], ".") {
		return SubscriberEmail{}, fmt.Errorf("%q is not a valid email address", raw)
	}

	return SubscriberEmail{value: raw}, nil
}

func (e SubscriberEmail) String() string { return e.value }
