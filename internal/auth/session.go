package auth

// Session is a resolved request identity. Role is empty for authenticated
// users without a staff_users record; such sessions rank as tier 0.
type Session struct {
	UserID   string
	Email    string
	Username string
	Role     string
}

// Tier returns the session's role tier. Safe on a nil session (tier 0).
func (s *Session) Tier() Tier {
	if s == nil {
		return TierPublic
	}
	return TierOf(s.Role)
}

// IsStaff reports whether the session carries any staff role.
func (s *Session) IsStaff() bool {
	if s == nil {
		return false
	}
	return HasTier(s.Role, TierStaff)
}
