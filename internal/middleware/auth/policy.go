package auth

import (
	"strings"

	"schoollibrary/internal/microservices/http-api/models"
)

// Identity is the authenticated user behind a request, resolved once from the session.
type Identity struct {
	UserID    string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	SessionID string      `json:"-"`
}

// Resource is the class of a requested route.
type Resource int

const (
	ResourcePublic Resource = iota
	ResourceDashboard
)

func (r Resource) String() string {
	if r == ResourceDashboard {
		return "dashboard"
	}
	return "public"
}

var dashboardRoles = map[models.Role]bool{
	models.RoleAdmin:     true,
	models.RoleLibrarian: true,
	models.RolePrincipal: true,
}

// Permit decides whether identity may reach resource. A nil identity is an
// unauthenticated caller.
func Permit(identity *Identity, resource Resource) bool {
	switch resource {
	case ResourcePublic:
		return true
	case ResourceDashboard:
		return identity != nil && dashboardRoles[identity.Role]
	default:
		return false
	}
}

// ResourceForPath classifies a request path.
func ResourceForPath(path string) Resource {
	if path == "/dashboard" || strings.HasPrefix(path, "/dashboard/") {
		return ResourceDashboard
	}
	return ResourcePublic
}
