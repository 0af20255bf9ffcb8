package service

import (
	"fmt"

	"service-portal/internal/model"
)

// Capability names one mutating or privileged operation. Every service
// checks capabilities through Can/authorize rather than comparing roles.
type Capability string

const (
	CapSubmitRequest    Capability = "submit_request"
	CapRateComplaint    Capability = "rate_complaint"
	CapViewEmergencies  Capability = "view_emergencies"
	CapDispatch         Capability = "dispatch"
	CapAdvanceDispatch  Capability = "advance_dispatch"
	CapManageVehicles   Capability = "manage_vehicles"
	CapViewComplaints   Capability = "view_complaints"
	CapAssignComplaint  Capability = "assign_complaint"
	CapAdvanceComplaint Capability = "advance_complaint"
	CapEscalate         Capability = "escalate"
	CapManageStaff      Capability = "manage_staff"
	CapExportReports    Capability = "export_reports"
)

var roleCapabilities = map[model.UserRole][]Capability{
	model.UserRoleCitizen: {
		CapSubmitRequest,
		CapRateComplaint,
	},
	model.UserRoleEmergencyOperator: {
		CapViewEmergencies,
		CapDispatch,
		CapAdvanceDispatch,
		CapManageVehicles,
	},
	model.UserRoleVehicleDriver: {
		CapViewEmergencies,
		CapAdvanceDispatch,
	},
	model.UserRoleUtilityOfficer: {
		CapViewComplaints,
		CapAssignComplaint,
		CapAdvanceComplaint,
		CapEscalate,
	},
	model.UserRoleGovernmentAuthority: {
		CapViewEmergencies,
		CapViewComplaints,
		CapAdvanceComplaint,
		CapManageStaff,
		CapExportReports,
	},
}

// Can reports whether the principal's role grants capability.
func Can(principal model.Principal, capability Capability) bool {
	for _, c := range roleCapabilities[principal.Role] {
		if c == capability {
			return true
		}
	}
	return false
}

func authorize(principal model.Principal, capability Capability) error {
	if Can(principal, capability) {
		return nil
	}
	return fmt.Errorf("%w: %s may not %s", ErrPermissionDenied, principal.Role, capability)
}
