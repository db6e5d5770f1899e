package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/subscription"
)

// Handlers contains the newsletter HTTP handlers
type Handlers struct {
	service *subscription.Service
	db      *sql.DB
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *subscription.Service, db *sql.DB) *Handlers {
	return &Handlers{service: svc, db: db}
}

// Subscribe registers a new subscriber from a URL-encoded form.
//
//	POST /subscriptions  (form fields: name, email)
//
// 200 on success (including a repeat request for a known email), 400 on
// malformed input, 500 on any infrastructure failure. Internal detail never
// reaches the response body.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "invalid form payload")
		return
	}

	err := h.service.Subscribe(r.Context(), subscription.NewSubscriber{
		Email: r.PostForm.Get("email"),
		Name:  r.PostForm.Get("name"),
	})
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	var vErr *subscription.ValidationError
	if errors.As(err, &vErr) {
		httputil.BadRequest(w, vErr.Reason)
		return
	}

	logger.Error("subscribe request failed",
		"request_id", middleware.GetReqID(r.Context()), "error", err)
	httputil.InternalError(w)
}

// ConfirmSubscription redeems an emailed confirmation token.
//
//	GET /subscriptions/confirm?subscription_token=<token>
//
// 200 on success, 400 when the token is missing, 401 when no subscription
// matches it, 500 on storage failure.
func (h *Handlers) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("subscription_token")

	err := h.service.Confirm(r.Context(), token)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, subscription.ErrMissingToken):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, subscription.ErrUnknownToken):
		httputil.Unauthorized(w, err.Error())
	default:
		logger.Error("confirm request failed",
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		httputil.InternalError(w)
	}
}
