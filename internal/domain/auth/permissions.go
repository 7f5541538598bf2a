package auth

const (
	PermLeaveApply        = "leave.apply"
	PermLeaveRead         = "leave.read"
	PermLeaveApprove      = "leave.approve"
	PermLeaveTeamRead     = "leave.team.read"
	PermAttendanceSelf    = "attendance.self"
	PermAttendanceTeam    = "attendance.team"
	PermAttendanceApprove = "attendance.approve"
	PermMetricsRead       = "metrics.read"
	PermAuditRead         = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermLeaveApply,
		PermLeaveRead,
		PermAttendanceSelf,
	},
	RoleManager: {
		PermLeaveApply,
		PermLeaveRead,
		PermLeaveApprove,
		PermLeaveTeamRead,
		PermAttendanceSelf,
		PermAttendanceTeam,
		PermAttendanceApprove,
	},
	RoleAdmin: {
		PermLeaveApply,
		PermLeaveRead,
		PermLeaveApprove,
		PermLeaveTeamRead,
		PermAttendanceSelf,
		PermAttendanceTeam,
		PermAttendanceApprove,
		PermMetricsRead,
		PermAuditRead,
	},
}

// RolePermissionStore answers permission checks from the static role table.
type RolePermissionStore struct{}

func (RolePermissionStore) HasPermission(roleName, permission string) bool {
	for _, granted := range RolePermissions[roleName] {
		if granted == permission {
			return true
		}
	}
	return false
}
