package testfixtures

// Stable identifiers shared by package tests.
const (
	AdminID    = "00000000-0000-0000-0000-00000000000a"
	Admin2ID   = "00000000-0000-0000-0000-00000000000b"
	ManagerID  = "00000000-0000-0000-0000-00000000000c"
	Manager2ID = "00000000-0000-0000-0000-00000000000d"
	EmployeeID = "00000000-0000-0000-0000-00000000000e"
	PeerID     = "00000000-0000-0000-0000-00000000000f"
)
