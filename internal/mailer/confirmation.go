package mailer

import (
	"fmt"
	"net/url"
	"strings"
)

// ConfirmationSubject is the fixed subject line of every confirmation email.
const ConfirmationSubject = "Welcome to our newsletter!"

// ConfirmationLink builds the confirmation URL embedded in both email
// bodies. The token travels as a query parameter.
func ConfirmationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s",
		strings.TrimRight(baseURL, "/"), url.QueryEscape(token))
}

// ConfirmationBodies renders the HTML and plain-text bodies of the
// confirmation email. Both carry the identical confirmation URL.
func ConfirmationBodies(link string) (htmlBody, textBody string) {
	htmlBody = fmt.Sprintf(
		"<p>Welcome to our newsletter!</p>"+
			"<p>Click <a href=\"%s\">here</a> to confirm your subscription.</p>",
		link)
	textBody = fmt.Sprintf(
		"Welcome to our newsletter!\nVisit %s to confirm your subscription.\n",
		link)
	return htmlBody, textBody
}
