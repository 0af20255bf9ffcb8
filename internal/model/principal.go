package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleCitizen             UserRole = "citizen"
	UserRoleGovernmentAuthority UserRole = "government_authority"
	UserRoleUtilityOfficer      UserRole = "utility_officer"
	UserRoleEmergencyOperator   UserRole = "emergency_operator"
	UserRoleVehicleDriver       UserRole = "vehicle_driver"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleCitizen, UserRoleGovernmentAuthority, UserRoleUtilityOfficer, UserRoleEmergencyOperator, UserRoleVehicleDriver:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role belongs to municipal staff rather than the public.
func (r UserRole) IsStaff() bool {
	return r.Valid() && r != UserRoleCitizen
}

type Principal struct {
	UserID   uuid.UUID
	Role     UserRole
	Username string
}

func (p Principal) IsCitizen() bool {
	return p.Role == UserRoleCitizen
}

func (p Principal) IsAuthority() bool {
	return p.Role == UserRoleGovernmentAuthority
}

func (p Principal) IsUtilityOfficer() bool {
	return p.Role == UserRoleUtilityOfficer
}

func (p Principal) IsOperator() bool {
	return p.Role == UserRoleEmergencyOperator
}

func (p Principal) IsDriver() bool {
	return p.Role == UserRoleVehicleDriver
}
