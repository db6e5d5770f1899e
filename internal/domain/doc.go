// Package domain defines the core business types for the newsletter service.
//
// Types in this package are pure value objects with no database dependencies
// and no HTTP concerns. They are the shared language between handlers,
// services, and the store.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - Validation lives in the New* constructors (they're pure functions)
//   - Constants and enums belong here
package domain
