package models

import "time"

// Folder is a node in a user's folder tree. ParentID is nil at the root.
type Folder struct {
	ID        string
	OwnerID   string
	Name      string
	ParentID  *string
	CreatedAt time.Time
}
