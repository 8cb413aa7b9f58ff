package model

// Platform roles carried in auth claims.
const (
	RolePlayer = "player"
	RoleCoach  = "coach"
	RoleAdmin  = "admin"
)

// Actor is the authenticated principal a request acts as. The API
// layer builds it from token claims; the service layer trusts it.
type Actor struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the actor carries a role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanVerify reports whether the actor may verify or resolve results.
func (a Actor) CanVerify() bool {
	return a.HasRole(RoleCoach) || a.HasRole(RoleAdmin)
}

// CanArchive reports whether the actor may archive results.
func (a Actor) CanArchive() bool {
	return a.HasRole(RoleAdmin)
}
