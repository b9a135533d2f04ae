package models

// Tenant identifies the schema and user a request operates on.
type Tenant struct {
	Schema string
	UserID string
}
