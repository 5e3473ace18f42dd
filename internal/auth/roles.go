package auth

// Staff roles as stored in the staff_users table.
// Hierarchy: admin > moderator > staff.
const (
	RoleStaff     = "staff"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Tier is the integer rank used for authorization comparisons. Public routes
// are tier 0, so any session (or none) passes them.
type Tier int

const (
	TierPublic    Tier = 0
	TierStaff     Tier = 1
	TierModerator Tier = 2
	TierAdmin     Tier = 3
)

// TierOf maps a role string to its tier. Unknown or empty roles rank as
// public, so an authenticated user without a staff record never passes a
// staff-tier check.
func TierOf(role string) Tier {
	switch role {
	case RoleStaff:
		return TierStaff
	case RoleModerator:
		return TierModerator
	case RoleAdmin:
		return TierAdmin
	default:
		return TierPublic
	}
}

// HasTier checks if the user's role meets the minimum required tier.
func HasTier(role string, required Tier) bool {
	return TierOf(role) >= required
}
