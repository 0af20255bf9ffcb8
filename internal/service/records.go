package service

import (
	"fmt"

	"github.com/google/uuid"

	"service-portal/internal/model"
	"service-portal/internal/workflow"
)

func statusLog(kind model.RequestKind, id uuid.UUID, from *model.RequestStatus, to model.RequestStatus, note string, actor uuid.UUID) *model.RequestStatusLog {
	return &model.RequestStatusLog{
		RequestKind: kind,
		RequestID:   id,
		OldStatus:   from,
		NewStatus:   to,
		Note:        note,
		ChangedBy:   &actor,
	}
}

func statusPtr(s model.RequestStatus) *model.RequestStatus {
	return &s
}

// maxListLimit caps the page size of every listing.
const maxListLimit = 1000

func pageLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func emergencyRecord(e model.EmergencyRequest) model.EmergencyRecord {
	record := model.EmergencyRecord{
		Request:  e,
		Location: e.Location(),
	}
	if e.EmergencyType != nil {
		record.TypeName = e.EmergencyType.Name
	}
	if d := e.ActiveDispatch(); d != nil {
		record.ActiveDispatch = dispatchBrief(d)
	}
	return record
}

func dispatchBrief(d *model.DispatchRecord) *model.DispatchBrief {
	brief := &model.DispatchBrief{ID: d.ID, Status: d.Status}
	if d.Vehicle != nil {
		brief.Vehicle = vehicleBrief(d.Vehicle)
	}
	return brief
}

func vehicleBrief(v *model.EmergencyVehicle) *model.VehicleBrief {
	return &model.VehicleBrief{
		ID:            v.ID,
		VehicleType:   v.VehicleType,
		VehicleNumber: v.VehicleNumber,
		DriverName:    v.DriverName,
		DriverContact: v.DriverContact,
	}
}

func complaintRecord(c model.Complaint) model.ComplaintRecord {
	record := model.ComplaintRecord{
		Complaint:       c,
		Location:        c.Location(),
		AssignedOfficer: c.AssignedOfficer.Brief(),
	}
	if c.UtilityType != nil {
		record.TypeName = c.UtilityType.Name
		record.Department = c.UtilityType.Department
	}
	return record
}

// ListOptions narrows a request listing. Citizens always see only their
// own requests. For staff, Mine selects the requests they handle: the
// emergencies an operator dispatched, the complaints assigned to an officer.
type ListOptions struct {
	Mine         bool
	Statuses     []model.RequestStatus
	Unassigned   bool
	AssignedToMe bool
	Limit        int
	Offset       int
}

func checkStatuses(lc *workflow.Lifecycle, statuses []model.RequestStatus) error {
	for _, s := range statuses {
		if !lc.Knows(s) {
			return fmt.Errorf("%w: unknown %s status %q", ErrValidation, lc.Kind(), s)
		}
	}
	return nil
}
