package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/newsletter/internal/store"
)

type sentEmail struct {
	to      string
	subject string
	html    string
	text    string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, html: htmlBody, text: textBody})
	return nil
}

const testBaseURL = "https://newsletter.ignite.com"

func setupService(t *testing.T, m *fakeMailer, opts ...Option) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(store.New(db), m, testBaseURL, opts...), mock
}

func fixedToken(tok string) Option {
	return WithTokenSource(func() (string, error) { return tok, nil })
}

var tokenParamRegex = regexp.MustCompile(`subscription_token=([A-Za-z0-9]+)`)

func TestSubscribeHappyPath(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m, fixedToken("x7hQp2mZk9rL4tYv8wNc5bJd0"))

	subID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM subscriptions WHERE email").
		WithArgs("ursula_le_guin@gmail.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO subscriptions").
		WithArgs(sqlmock.AnyArg(), "ursula_le_guin@gmail.com", "le guin",
			"pending_confirmation", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(subID.String()))
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WithArgs("x7hQp2mZk9rL4tYv8wNc5bJd0", subID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Subscribe(context.Background(), NewSubscriber{
		Email: "ursula_le_guin@gmail.com",
		Name:  "le guin",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, m.sent, 1)
	sent := m.sent[0]
	assert.Equal(t, "ursula_le_guin@gmail.com", sent.to)
	assert.Equal(t, "Welcome to our newsletter!", sent.subject)

	htmlLink := tokenParamRegex.FindStringSubmatch(sent.html)
	textLink := tokenParamRegex.FindStringSubmatch(sent.text)
	require.NotNil(t, htmlLink, "HTML body carries no confirmation token")
	require.NotNil(t, textLink, "text body carries no confirmation token")
	assert.Equal(t, "x7hQp2mZk9rL4tYv8wNc5bJd0", htmlLink[1])
	assert.Equal(t, htmlLink[1], textLink[1], "HTML and text bodies must embed the identical URL")
	assert.Contains(t, sent.html, testBaseURL+"/subscriptions/confirm?subscription_token=")
}

func TestSubscribeExistingEmailReusesSubscriber(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m, fixedToken("secondtokenvalue123456789"))

	existingID := uuid.New()

	// Lookup finds the subscriber, so no subscriber insert happens; only a
	// fresh token row is written.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM subscriptions WHERE email").
		WithArgs("ursula_le_guin@gmail.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingID.String()))
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WithArgs("secondtokenvalue123456789", existingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Subscribe(context.Background(), NewSubscriber{
		Email: "ursula_le_guin@gmail.com",
		Name:  "le guin",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, m.sent, 1)
}

func TestSubscribeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input NewSubscriber
	}{
		{"empty email", NewSubscriber{Email: "", Name: "le guin"}},
		{"email missing at sign", NewSubscriber{Email: "ursulagmail.com", Name: "le guin"}},
		{"email missing domain dot", NewSubscriber{Email: "ursula@gmail", Name: "le guin"}},
		{"empty name", NewSubscriber{Email: "ursula_le_guin@gmail.com", Name: ""}},
		{"whitespace name", NewSubscriber{Email: "ursula_le_guin@gmail.com", Name: "   "}},
		{"forbidden character in name", NewSubscriber{Email: "ursula_le_guin@gmail.com", Name: "le<guin>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMailer{}
			// No DB expectations: validation failures must short-circuit
			// before any persistence attempt.
			svc, mock := setupService(t, m)

			err := svc.Subscribe(context.Background(), tt.input)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.True(t, IsClientError(err))
			assert.NoError(t, mock.ExpectationsWereMet())
			assert.Empty(t, m.sent, "no email may be dispatched for rejected input")
		})
	}
}

func TestSubscribeRollsBackWhenTokenInsertFails(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m, fixedToken("x7hQp2mZk9rL4tYv8wNc5bJd0"))

	subID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM subscriptions WHERE email").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO subscriptions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(subID.String()))
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WillReturnError(fmt.Errorf("token table is on fire"))
	mock.ExpectRollback()

	err := svc.Subscribe(context.Background(), NewSubscriber{
		Email: "ursula_le_guin@gmail.com",
		Name:  "le guin",
	})

	var infraErr *InfrastructureError
	require.ErrorAs(t, err, &infraErr)
	assert.Equal(t, OpStoreToken, infraErr.Op)
	assert.ErrorContains(t, infraErr.Cause, "token table is on fire")
	assert.False(t, IsClientError(err))
	assert.Empty(t, m.sent, "no email may follow a rolled-back transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeReportsCommitFailure(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m, fixedToken("x7hQp2mZk9rL4tYv8wNc5bJd0"))

	subID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM subscriptions WHERE email").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO subscriptions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(subID.String()))
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(fmt.Errorf("connection reset"))

	err := svc.Subscribe(context.Background(), NewSubscriber{
		Email: "ursula_le_guin@gmail.com",
		Name:  "le guin",
	})

	var infraErr *InfrastructureError
	require.ErrorAs(t, err, &infraErr)
	assert.Equal(t, OpCommitTx, infraErr.Op)
	assert.Empty(t, m.sent)
}

func TestSubscribeReportsEmailFailureAfterCommit(t *testing.T) {
	m := &fakeMailer{err: fmt.Errorf("smtp relay unreachable")}
	svc, mock := setupService(t, m, fixedToken("x7hQp2mZk9rL4tYv8wNc5bJd0"))

	subID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM subscriptions WHERE email").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO subscriptions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(subID.String()))
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Subscribe(context.Background(), NewSubscriber{
		Email: "ursula_le_guin@gmail.com",
		Name:  "le guin",
	})

	// The rows are committed, yet the caller still sees a failure: persisted
	// at least once, delivered best effort.
	var infraErr *InfrastructureError
	require.ErrorAs(t, err, &infraErr)
	assert.Equal(t, OpSendEmail, infraErr.Op)
	require.NoError(t, mock.ExpectationsWereMet(), "transaction must have committed before the send")
}

func TestSubscribeTwiceIssuesTwoTokensForOneSubscriber(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m) // real token generator

	subID := uuid.New()

	// First request inserts the subscriber.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM subscriptions WHERE email").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO subscriptions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(subID.String()))
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Second request reuses the row and only stores a fresh token.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM subscriptions WHERE email").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(subID.String()))
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := NewSubscriber{Email: "ursula_le_guin@gmail.com", Name: "le guin"}
	require.NoError(t, svc.Subscribe(context.Background(), req))
	require.NoError(t, svc.Subscribe(context.Background(), req))
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, m.sent, 2, "each request dispatches its own email")
	first := tokenParamRegex.FindStringSubmatch(m.sent[0].html)
	second := tokenParamRegex.FindStringSubmatch(m.sent[1].html)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, first[1], second[1], "repeat requests must issue distinct tokens")
}

func TestConfirm(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m)

	subID := uuid.New()

	mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
		WithArgs("x7hQp2mZk9rL4tYv8wNc5bJd0").
		WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}).AddRow(subID.String()))
	mock.ExpectExec("UPDATE subscriptions SET status").
		WithArgs("confirmed", subID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Confirm(context.Background(), "x7hQp2mZk9rL4tYv8wNc5bJd0")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmMissingToken(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m)

	for _, raw := range []string{"", "   "} {
		err := svc.Confirm(context.Background(), raw)
		assert.ErrorIs(t, err, ErrMissingToken)
		assert.True(t, IsClientError(err))
	}
	// No queries, no updates: a missing token never touches the store.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmUnknownToken(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m)

	mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
		WithArgs("nosuchtoken").
		WillReturnError(sql.ErrNoRows)

	err := svc.Confirm(context.Background(), "nosuchtoken")
	assert.ErrorIs(t, err, ErrUnknownToken)
	assert.True(t, IsClientError(err))
	// No UPDATE was expected and none may run.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmIsIdempotent(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m)

	subID := uuid.New()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
			WithArgs("x7hQp2mZk9rL4tYv8wNc5bJd0").
			WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}).AddRow(subID.String()))
		mock.ExpectExec("UPDATE subscriptions SET status").
			WithArgs("confirmed", subID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, svc.Confirm(context.Background(), "x7hQp2mZk9rL4tYv8wNc5bJd0"))
	require.NoError(t, svc.Confirm(context.Background(), "x7hQp2mZk9rL4tYv8wNc5bJd0"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmStorageFailure(t *testing.T) {
	m := &fakeMailer{}
	svc, mock := setupService(t, m)

	subID := uuid.New()

	mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}).AddRow(subID.String()))
	mock.ExpectExec("UPDATE subscriptions SET status").
		WillReturnError(errors.New("disk full"))

	err := svc.Confirm(context.Background(), "x7hQp2mZk9rL4tYv8wNc5bJd0")

	var infraErr *InfrastructureError
	require.ErrorAs(t, err, &infraErr)
	assert.Equal(t, OpConfirmSubscriber, infraErr.Op)
	assert.False(t, IsClientError(err))
}
