package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"

	"service-portal/internal/model"
	"service-portal/internal/repository"
	"service-portal/internal/workflow"
)

type EmergencyService struct {
	userRepo      *repository.UserRepository
	catalogRepo   *repository.CatalogRepository
	emergencyRepo *repository.EmergencyRepository
	vehicleRepo   *repository.VehicleRepository
	defaultLimit  int
	now           func() time.Time
}

func NewEmergencyService(
	userRepo *repository.UserRepository,
	catalogRepo *repository.CatalogRepository,
	emergencyRepo *repository.EmergencyRepository,
	vehicleRepo *repository.VehicleRepository,
	defaultLimit int,
) *EmergencyService {
	return &EmergencyService{
		userRepo:      userRepo,
		catalogRepo:   catalogRepo,
		emergencyRepo: emergencyRepo,
		vehicleRepo:   vehicleRepo,
		defaultLimit:  defaultLimit,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type SubmitEmergencyInput struct {
	EmergencyTypeID uuid.UUID      `json:"emergency_type_id"`
	Priority        model.Priority `json:"priority"`
	Location        model.Location `json:"location"`
	Description     string         `json:"description"`
	ContactNumber   string         `json:"contact_number" validate:"max=15"`
	AdditionalInfo  string         `json:"additional_info"`
}

func (s *EmergencyService) Submit(ctx context.Context, principal model.Principal, input SubmitEmergencyInput) (*model.EmergencyRecord, error) {
	if err := authorize(principal, CapSubmitRequest); err != nil {
		return nil, err
	}
	input.ContactNumber = strings.TrimSpace(input.ContactNumber)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	loc, err := validateLocation(input.Location)
	if err != nil {
		return nil, err
	}
	description, err := requireText("description", input.Description)
	if err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.ValidForEmergency() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}

	emergencyType, err := s.catalogRepo.GetEmergencyType(ctx, input.EmergencyTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown emergency type", ErrValidation)
		}
		return nil, err
	}

	contact := input.ContactNumber
	if contact == "" {
		requester, err := s.userRepo.GetByID(ctx, principal.UserID)
		if err != nil {
			return nil, translate(err)
		}
		contact = requester.PhoneNumber
	}

	request := &model.EmergencyRequest{
		CitizenID:       principal.UserID,
		EmergencyTypeID: emergencyType.ID,
		Priority:        priority,
		Status:          model.RequestStatusPending,
		LocationLat:     loc.Lat,
		LocationLng:     loc.Lng,
		Address:         loc.Address,
		Landmark:        loc.Landmark,
		Description:     description,
		ContactNumber:   contact,
		AdditionalInfo:  cleanText(input.AdditionalInfo),
	}

	log := statusLog(model.RequestKindEmergency, uuid.Nil, nil, model.RequestStatusPending, "", principal.UserID)
	if err := s.emergencyRepo.Create(ctx, request, log); err != nil {
		return nil, err
	}

	request.EmergencyType = emergencyType
	record := emergencyRecord(*request)
	return &record, nil
}

func (s *EmergencyService) List(ctx context.Context, principal model.Principal, opts ListOptions) ([]model.EmergencyRecord, error) {
	if err := checkStatuses(workflow.Emergency, opts.Statuses); err != nil {
		return nil, err
	}

	filter := repository.EmergencyFilter{
		Statuses:   opts.Statuses,
		Unassigned: opts.Unassigned,
		Limit:      pageLimit(opts.Limit, s.defaultLimit),
		Offset:     opts.Offset,
	}
	switch {
	case principal.IsCitizen():
		filter.CitizenID = &principal.UserID
	case Can(principal, CapViewEmergencies):
		if opts.Mine {
			filter.DispatchedBy = &principal.UserID
		}
	default:
		return nil, fmt.Errorf("%w: %s cannot list emergencies", ErrPermissionDenied, principal.Role)
	}

	requests, err := s.emergencyRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := make([]model.EmergencyRecord, 0, len(requests))
	for _, r := range requests {
		records = append(records, emergencyRecord(r))
	}
	return records, nil
}

func (s *EmergencyService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.EmergencyRequest, error) {
	request, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !s.canView(principal, request) {
		return nil, ErrNotFound
	}
	return request, nil
}

func (s *EmergencyService) canView(principal model.Principal, request *model.EmergencyRequest) bool {
	if principal.IsCitizen() {
		return request.CitizenID == principal.UserID
	}
	return Can(principal, CapViewEmergencies)
}

type AssignVehicleInput struct {
	VehicleID uuid.UUID
	Notes     string
}

// Assign dispatches a vehicle to a pending emergency.
func (s *EmergencyService) Assign(ctx context.Context, principal model.Principal, emergencyID uuid.UUID, input AssignVehicleInput) (*model.DispatchRecord, error) {
	if err := authorize(principal, CapDispatch); err != nil {
		return nil, err
	}

	request, err := s.emergencyRepo.GetByID(ctx, emergencyID)
	if err != nil {
		return nil, translate(err)
	}
	if request.ActiveDispatch() != nil {
		return nil, fmt.Errorf("%w: emergency already has an active dispatch", ErrAlreadyAssigned)
	}
	from := request.Status
	if _, err := workflow.Emergency.Next(from, workflow.ActionAssign); err != nil {
		if !workflow.Emergency.IsTerminal(from) {
			return nil, fmt.Errorf("%w: emergency is %s", ErrAlreadyAssigned, from)
		}
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, translate(err)
	}
	if !vehicle.IsAvailable {
		return nil, fmt.Errorf("%w: vehicle %s is not available", ErrResourceUnavailable, vehicle.VehicleNumber)
	}

	now := s.now()
	actor := principal.UserID
	dispatch := &model.DispatchRecord{
		EmergencyID:  request.ID,
		VehicleID:    vehicle.ID,
		AssignedByID: &actor,
		Status:       model.DispatchStatusAssigned,
		Notes:        cleanText(input.Notes),
		AssignedAt:   now,
	}
	updates := request.SetStatus(model.RequestStatusAssigned, now)

	err = s.emergencyRepo.Dispatch(ctx, repository.DispatchUnit{
		Change: repository.StatusChange{
			ID:      request.ID,
			From:    from,
			Updates: updates,
			Log: statusLog(model.RequestKindEmergency, request.ID, statusPtr(from), model.RequestStatusAssigned,
				"dispatched "+vehicle.VehicleNumber, actor),
		},
		Dispatch: dispatch,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, fmt.Errorf("%w: emergency changed while assigning", ErrAlreadyAssigned)
		case errors.Is(err, repository.ErrVehicleUnavailable), errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, fmt.Errorf("%w: vehicle %s is not available", ErrResourceUnavailable, vehicle.VehicleNumber)
		}
		return nil, err
	}

	vehicle.IsAvailable = false
	dispatch.Vehicle = vehicle
	return dispatch, nil
}

type AdvanceDispatchInput struct {
	Status model.DispatchStatus
	Notes  string
}

// AdvanceDispatch moves a dispatch forward and mirrors the change onto its
// emergency. Finishing a dispatch frees its vehicle.
func (s *EmergencyService) AdvanceDispatch(ctx context.Context, principal model.Principal, dispatchID uuid.UUID, input AdvanceDispatchInput) (*model.EmergencyRequest, error) {
	if err := authorize(principal, CapAdvanceDispatch); err != nil {
		return nil, err
	}
	if input.Status == model.DispatchStatusCancelled {
		if err := authorize(principal, CapDispatch); err != nil {
			return nil, err
		}
	}

	dispatch, err := s.emergencyRepo.GetDispatch(ctx, dispatchID)
	if err != nil {
		return nil, translate(err)
	}
	request, err := s.emergencyRepo.GetByID(ctx, dispatch.EmergencyID)
	if err != nil {
		return nil, translate(err)
	}

	step, err := workflow.AdvanceDispatch(dispatch.Status, input.Status, request.Status)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := request.Status
	notes := cleanText(input.Notes)
	err = s.emergencyRepo.AdvanceDispatch(ctx, repository.DispatchAdvance{
		DispatchID:     dispatch.ID,
		VehicleID:      dispatch.VehicleID,
		From:           dispatch.Status,
		To:             step.Dispatch,
		Notes:          notes,
		At:             now,
		ReleaseVehicle: step.ReleaseVehicle,
		Change: repository.StatusChange{
			ID:      request.ID,
			From:    from,
			Updates: request.SetStatus(step.Request, now),
			Log:     statusLog(model.RequestKindEmergency, request.ID, statusPtr(from), step.Request, notes, principal.UserID),
		},
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: dispatch changed concurrently", ErrConflict)
		}
		return nil, err
	}

	return s.Get(ctx, principal, request.ID)
}

// Cancel withdraws an emergency. The filing citizen may cancel while it is
// pending; operators may cancel any open emergency, which also recalls the
// active dispatch.
func (s *EmergencyService) Cancel(ctx context.Context, principal model.Principal, emergencyID uuid.UUID, reason string) (*model.EmergencyRequest, error) {
	request, err := s.emergencyRepo.GetByID(ctx, emergencyID)
	if err != nil {
		return nil, translate(err)
	}

	switch {
	case principal.IsCitizen():
		if request.CitizenID != principal.UserID {
			return nil, ErrNotFound
		}
		if request.Status != model.RequestStatusPending {
			return nil, fmt.Errorf("%w: only pending emergencies can be withdrawn", ErrInvalidTransition)
		}
	case Can(principal, CapDispatch):
	default:
		return nil, fmt.Errorf("%w: %s cannot cancel emergencies", ErrPermissionDenied, principal.Role)
	}

	from := request.Status
	next, err := workflow.Emergency.Next(from, workflow.ActionCancel)
	if err != nil {
		return nil, err
	}

	now := s.now()
	note := cleanText(reason)
	unit := repository.CancelUnit{}
	if active := request.ActiveDispatch(); active != nil {
		unit.Dispatch = &repository.DispatchAdvance{
			DispatchID:     active.ID,
			VehicleID:      active.VehicleID,
			From:           active.Status,
			To:             model.DispatchStatusCancelled,
			Notes:          note,
			At:             now,
			ReleaseVehicle: true,
		}
	}
	unit.Change = repository.StatusChange{
		ID:      request.ID,
		From:    from,
		Updates: request.SetStatus(next, now),
		Log:     statusLog(model.RequestKindEmergency, request.ID, statusPtr(from), next, note, principal.UserID),
	}

	if err := s.emergencyRepo.Cancel(ctx, unit); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: emergency changed concurrently", ErrConflict)
		}
		return nil, err
	}

	return s.emergencyRepo.GetByID(ctx, request.ID)
}

// ActiveMap returns open emergencies that carry coordinates as GeoJSON
// point features.
func (s *EmergencyService) ActiveMap(ctx context.Context, principal model.Principal) (*geojson.FeatureCollection, error) {
	if err := authorize(principal, CapViewEmergencies); err != nil {
		return nil, err
	}

	requests, err := s.emergencyRepo.List(ctx, repository.EmergencyFilter{
		Statuses: []model.RequestStatus{
			model.RequestStatusPending,
			model.RequestStatusAssigned,
			model.RequestStatusEnRoute,
			model.RequestStatusOnScene,
		},
		WithCoordinates: true,
		Limit:           pageLimit(0, s.defaultLimit),
	})
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for _, r := range requests {
		point, ok := r.Location().Point()
		if !ok {
			continue
		}
		record := emergencyRecord(r)
		feature := geojson.NewFeature(point)
		feature.ID = r.ID.String()
		feature.Properties["type"] = record.TypeName
		feature.Properties["status"] = string(r.Status)
		feature.Properties["priority"] = string(r.Priority)
		feature.Properties["address"] = r.Address
		feature.Properties["created_at"] = r.CreatedAt
		if record.ActiveDispatch != nil && record.ActiveDispatch.Vehicle != nil {
			feature.Properties["vehicle_number"] = record.ActiveDispatch.Vehicle.VehicleNumber
		}
		fc.Append(feature)
	}
	return fc, nil
}
