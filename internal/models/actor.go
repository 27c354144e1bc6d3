package models

// Role is the principal role supplied by the credential provider
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated principal performing an operation
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RequireAdmin fails with AccessDenied unless the actor is an admin
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return AccessDenied("admin role required")
	}
	return nil
}

// RequireOwner fails with AccessDenied unless the actor owns the entity.
// Admins pass the check.
func (a Actor) RequireOwner(ownerID string) error {
	if a.IsAdmin() {
		return nil
	}
	if a.ID == "" || a.ID != ownerID {
		return AccessDenied("you do not own this resource")
	}
	return nil
}

// RequireStrictOwner fails unless the actor's id matches, regardless of role
func (a Actor) RequireStrictOwner(ownerID string) error {
	if a.ID == "" || a.ID != ownerID {
		return AccessDenied("you do not own this resource")
	}
	return nil
}
