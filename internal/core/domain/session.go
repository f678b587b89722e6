package domain

// Role identifies the kind of account behind a session.
type Role string

const (
	// RoleStudent is a student looking for research positions.
	RoleStudent Role = "student"
	// RolePrincipalInvestigator is a PI running a lab.
	RolePrincipalInvestigator Role = "principalInvestigator"
)

// Session is the application's record of the currently authenticated user.
// It is created by a successful code exchange, overwritten by a re-login and
// destroyed by sign-out.
type Session struct {
	// UserID is the backend user id. Non-empty iff the session is
	// authenticated.
	UserID string `json:"userId"`
	// Email is the account email address.
	Email string `json:"email"`
	// Role determines the landing destination after sign-in.
	Role Role `json:"role"`
	// DisplayName is the user's full name for display.
	DisplayName string `json:"displayName"`
}

// IsAuthenticated returns true if the session belongs to a signed-in user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// Landing destinations, one per role plus a total default.
const (
	// DestinationPIDashboard is where principal investigators land.
	DestinationPIDashboard = "/pi-dashboard"
	// DestinationDashboard is the generic landing destination.
	DestinationDashboard = "/dashboard"
)

// RouteForRole maps a session role to its landing destination. The mapping is
// total: an unknown or empty role routes to the generic dashboard.
func RouteForRole(role Role) string {
	if role == RolePrincipalInvestigator {
		return DestinationPIDashboard
	}
	return DestinationDashboard
}
