// Package httputil provides shared HTTP response utilities for handlers.
//
// Handlers use these helpers instead of writing raw http.ResponseWriter
// calls so that error envelopes and content types stay consistent across
// endpoints.
package httputil
