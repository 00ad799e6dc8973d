// Package models defines server-side data models persisted in the database.
package models

import "time"

// Envelope is the key material produced when a document's content is
// encrypted: the AEAD nonce, the authentication tag, and the per-file data
// key wrapped under the master key. The three fields are written and read
// as a single unit together with the blob reference; none of them is ever
// updated independently.
type Envelope struct {
	IV         []byte
	AuthTag    []byte
	WrappedKey []byte
}

// Grant is a time-bounded permission allowing a non-owner to read a
// document. A grant is inert once the current time passes ValidUntil.
type Grant struct {
	ViewerID   string    `json:"viewer_id"`
	Permission string    `json:"permission"`
	ValidUntil time.Time `json:"valid_until"`
	GrantedAt  time.Time `json:"granted_at"`
}

// PermissionView is the only permission currently acted upon.
const PermissionView = "view"

// Document is one uploaded file. The ciphertext itself lives in the blob
// store under BlobRef; the row holds metadata and the encryption envelope.
//
// BlobRef and Envelope are immutable after creation. There is no
// update-contents operation: only FileName, FolderID and ACL mutate.
type Document struct {
	ID       string
	OwnerID  string
	FileName string
	FileType string
	Size     int64

	BlobRef  string
	Envelope Envelope

	// ACL maps viewer id to its single active grant. Keying by viewer
	// makes replace-on-share structural: a new grant for the same viewer
	// overwrites the old one.
	ACL map[string]Grant

	// FolderID is nil for root-level documents.
	FolderID *string

	CreatedAt time.Time
}
