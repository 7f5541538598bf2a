package auth

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

var Roles = []string{RoleAdmin, RoleManager, RoleEmployee}

// UserContext is the acting identity attached to every request.
type UserContext struct {
	UserID   string
	RoleName string
}

// IsSupervisor reports whether the role may see team-wide views.
func (u UserContext) IsSupervisor() bool {
	return u.RoleName == RoleAdmin || u.RoleName == RoleManager
}
