package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteForRole(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want string
	}{
		{"principal investigator", RolePrincipalInvestigator, DestinationPIDashboard},
		{"student", RoleStudent, DestinationDashboard},
		{"unknown role", Role("librarian"), DestinationDashboard},
		{"empty role", Role(""), DestinationDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteForRole(tt.role))
		})
	}
}

func TestRouteForRole_Idempotent(t *testing.T) {
	first := RouteForRole(RolePrincipalInvestigator)
	second := RouteForRole(RolePrincipalInvestigator)

	assert.Equal(t, first, second)
}

func TestSession_IsAuthenticated(t *testing.T) {
	authenticated := Session{UserID: "u1", Email: "a@ucla.edu", Role: RoleStudent}
	assert.True(t, authenticated.IsAuthenticated())

	anonymous := Session{}
	assert.False(t, anonymous.IsAuthenticated())
}
