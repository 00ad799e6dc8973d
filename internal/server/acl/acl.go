// Package acl decides whether a principal may read a document. It is a set
// of pure functions over the document's ACL and the current time: grants
// are self-expiring, so no revocation sweep is needed; every call
// re-checks validity against now.
package acl

import (
	"time"

	"docvault/internal/common"
	"docvault/internal/server/models"
)

// Authorize reports whether principalID may read doc at the given instant.
// The owner is always allowed, regardless of ACL state. Anyone else needs
// a grant that has not expired; the boundary now == ValidUntil still
// allows.
func Authorize(doc *models.Document, principalID string, now time.Time) bool {
	if principalID == doc.OwnerID {
		return true
	}
	grant, ok := doc.ACL[principalID]
	if !ok {
		return false
	}
	return !now.After(grant.ValidUntil)
}

// NewGrant builds the grant that Share will store for viewerID. The viewer
// id must already be resolved (email lookup happens in the service layer).
// Granting is owner-only, self-shares are rejected, and the duration must
// be positive; bounding it further (the 1-72h window) is the transport
// layer's input validation, not a concern here.
//
// Storing the returned grant under doc.ACL[viewerID] replaces any previous
// grant for that viewer wholesale: sharing again simply resets the window.
func NewGrant(doc *models.Document, granterID, viewerID string, duration time.Duration, now time.Time) (models.Grant, error) {
	if granterID != doc.OwnerID {
		return models.Grant{}, common.ErrorNotOwner
	}
	if viewerID == doc.OwnerID {
		return models.Grant{}, common.ErrorSelfShare
	}
	if duration <= 0 {
		return models.Grant{}, common.ErrorInvalidDuration
	}
	return models.Grant{
		ViewerID:   viewerID,
		Permission: models.PermissionView,
		ValidUntil: now.Add(duration),
		GrantedAt:  now,
	}, nil
}
