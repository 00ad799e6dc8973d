package models

import "time"

// AuditEntry records a security-relevant action. Writing one is always
// best-effort; a failed audit insert never fails the calling operation.
type AuditEntry struct {
	ID        string
	Action    string
	ActorID   string
	Resource  string
	IPAddress string
	Status    string
	Details   string
	CreatedAt time.Time
}
