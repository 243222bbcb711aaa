package messaging

import (
	"marketzone/backend/internal/apperr"
	"marketzone/backend/internal/auth"
)

// Guard decides whether an authenticated caller may touch a resource.
// It runs before any store access.
type Guard struct{}

func (Guard) authenticated(id auth.AuthenticatedIdentity) error {
	if id.UserID == "" {
		return apperr.Unauthenticated("Authentication required")
	}
	return nil
}

// RequireSelf allows the call only when userID is the caller.
func (g Guard) RequireSelf(id auth.AuthenticatedIdentity, userID string) error {
	if err := g.authenticated(id); err != nil {
		return err
	}
	if id.UserID != userID {
		return apperr.Forbidden("Unauthorized")
	}
	return nil
}

// RequireParticipant allows the call only when the caller is a or b.
func (g Guard) RequireParticipant(id auth.AuthenticatedIdentity, a, b string) error {
	if err := g.authenticated(id); err != nil {
		return err
	}
	if id.UserID != a && id.UserID != b {
		return apperr.Forbidden("Unauthorized to delete this conversation")
	}
	return nil
}
