package types

// Status is a type for the lifecycle status of a stored record.
// Soft-deleted records keep their row but are excluded from queries.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)
