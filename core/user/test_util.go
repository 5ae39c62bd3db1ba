package user

import (
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
)

// NewTestMember returns a valid NewMember for tests; subject teachers get a teaching assignment.
func NewTestMember(role, username string) NewMember {
	nm := NewMember{
		Username:     username,
		Name:         "Test " + username,
		Email:        username + "@mvjce.edu.in",
		Role:         role,
		Department:   "CSE",
		TempPassword: "temp1234",
	}
	if role == auth.RoleTeacher {
		nm.Semester = "5"
		nm.Subject = "Data Structures"
		nm.SubjectCode = "CS501"
	}
	return nm
}
