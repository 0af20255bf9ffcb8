package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"service-portal/internal/model"
	"service-portal/internal/repository"
	"service-portal/internal/workflow"
)

type ComplaintService struct {
	userRepo      *repository.UserRepository
	catalogRepo   *repository.CatalogRepository
	complaintRepo *repository.ComplaintRepository
	defaultLimit  int
	now           func() time.Time
}

func NewComplaintService(
	userRepo *repository.UserRepository,
	catalogRepo *repository.CatalogRepository,
	complaintRepo *repository.ComplaintRepository,
	defaultLimit int,
) *ComplaintService {
	return &ComplaintService{
		userRepo:      userRepo,
		catalogRepo:   catalogRepo,
		complaintRepo: complaintRepo,
		defaultLimit:  defaultLimit,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type SubmitComplaintInput struct {
	UtilityTypeID uuid.UUID      `json:"utility_type_id"`
	Title         string         `json:"title" validate:"max=200"`
	Description   string         `json:"description"`
	Priority      model.Priority `json:"priority"`
	Location      model.Location `json:"location"`
}

func (s *ComplaintService) Submit(ctx context.Context, principal model.Principal, input SubmitComplaintInput) (*model.ComplaintRecord, error) {
	if err := authorize(principal, CapSubmitRequest); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	loc, err := validateLocation(input.Location)
	if err != nil {
		return nil, err
	}
	title, err := requireText("title", input.Title)
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
	if !priority.ValidForComplaint() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}

	utilityType, err := s.catalogRepo.GetUtilityType(ctx, input.UtilityTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown utility type", ErrValidation)
		}
		return nil, err
	}
	prefix := model.ComplaintCodePrefix(utilityType.Name)
	if prefix == "" {
		return nil, fmt.Errorf("%w: utility type has no name", ErrValidation)
	}

	complaint := &model.Complaint{
		CitizenID:     principal.UserID,
		UtilityTypeID: utilityType.ID,
		Title:         title,
		Description:   description,
		Priority:      priority,
		Status:        model.RequestStatusPending,
		LocationLat:   loc.Lat,
		LocationLng:   loc.Lng,
		Address:       loc.Address,
		Landmark:      loc.Landmark,
	}

	log := statusLog(model.RequestKindComplaint, uuid.Nil, nil, model.RequestStatusPending, "", principal.UserID)
	if err := s.complaintRepo.Create(ctx, complaint, prefix, log); err != nil {
		return nil, translate(err)
	}

	complaint.UtilityType = utilityType
	record := complaintRecord(*complaint)
	return &record, nil
}

func (s *ComplaintService) List(ctx context.Context, principal model.Principal, opts ListOptions) ([]model.ComplaintRecord, error) {
	if err := checkStatuses(workflow.Complaint, opts.Statuses); err != nil {
		return nil, err
	}

	filter := repository.ComplaintFilter{
		Statuses:   opts.Statuses,
		Unassigned: opts.Unassigned,
		Limit:      pageLimit(opts.Limit, s.defaultLimit),
		Offset:     opts.Offset,
	}
	switch {
	case principal.IsCitizen():
		filter.CitizenID = &principal.UserID
	case Can(principal, CapViewComplaints):
		if opts.AssignedToMe || opts.Mine {
			filter.AssignedOfficerID = &principal.UserID
		}
	default:
		return nil, fmt.Errorf("%w: %s cannot list complaints", ErrPermissionDenied, principal.Role)
	}

	complaints, err := s.complaintRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := make([]model.ComplaintRecord, 0, len(complaints))
	for _, c := range complaints {
		records = append(records, complaintRecord(c))
	}
	return records, nil
}

func (s *ComplaintService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ComplaintRecord, error) {
	complaint, err := s.complaintRepo.GetByID(ctx, id)
	return s.visible(principal, complaint, err)
}

// GetByCode looks a complaint up by its human readable code, e.g. WAT-000042.
func (s *ComplaintService) GetByCode(ctx context.Context, principal model.Principal, code string) (*model.ComplaintRecord, error) {
	complaint, err := s.complaintRepo.GetByCode(ctx, code)
	return s.visible(principal, complaint, err)
}

func (s *ComplaintService) visible(principal model.Principal, complaint *model.Complaint, err error) (*model.ComplaintRecord, error) {
	if err != nil {
		return nil, translate(err)
	}
	if principal.IsCitizen() {
		if complaint.CitizenID != principal.UserID {
			return nil, ErrNotFound
		}
	} else if !Can(principal, CapViewComplaints) {
		return nil, ErrNotFound
	}
	record := complaintRecord(*complaint)
	return &record, nil
}

// Assign lets a utility officer take a complaint. A complaint held by
// another officer is not taken over.
func (s *ComplaintService) Assign(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ComplaintRecord, error) {
	if err := authorize(principal, CapAssignComplaint); err != nil {
		return nil, err
	}

	complaint, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	officer := principal.UserID
	if complaint.AssignedOfficerID != nil && *complaint.AssignedOfficerID != officer {
		return nil, fmt.Errorf("%w: complaint %s belongs to another officer", ErrAlreadyAssigned, complaint.Code)
	}

	from := complaint.Status
	now := s.now()
	var updates map[string]interface{}
	next, err := workflow.Complaint.Next(from, workflow.ActionAssign)
	switch {
	case err == nil:
		updates = complaint.SetStatus(next, now)
	case complaint.AssignedOfficerID == nil && (from == model.RequestStatusAssigned || from == model.RequestStatusInProgress):
		// Orphaned by a deleted officer: take it over without moving the status.
		next = from
		updates = map[string]interface{}{"updated_at": now}
	case from == model.RequestStatusAssigned || from == model.RequestStatusInProgress:
		return nil, fmt.Errorf("%w: complaint %s is %s", ErrAlreadyAssigned, complaint.Code, from)
	default:
		return nil, err
	}
	updates["assigned_officer_id"] = officer

	err = s.complaintRepo.Transition(ctx, repository.StatusChange{
		ID:        complaint.ID,
		From:      from,
		Updates:   updates,
		Guard:     "(assigned_officer_id IS NULL OR assigned_officer_id = ?)",
		GuardArgs: []interface{}{officer},
		Log:       statusLog(model.RequestKindComplaint, complaint.ID, statusPtr(from), next, "", officer),
	}, nil)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: complaint %s was taken concurrently", ErrAlreadyAssigned, complaint.Code)
		}
		return nil, err
	}

	return s.Get(ctx, principal, complaint.ID)
}

type AdvanceComplaintInput struct {
	Status model.RequestStatus
	Notes  string
}

// AdvanceStatus moves a complaint to the requested status. Assignment and
// escalation have their own operations and are refused here.
func (s *ComplaintService) AdvanceStatus(ctx context.Context, principal model.Principal, id uuid.UUID, input AdvanceComplaintInput) (*model.ComplaintRecord, error) {
	if err := authorize(principal, CapAdvanceComplaint); err != nil {
		return nil, err
	}

	complaint, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if principal.IsUtilityOfficer() && complaint.AssignedOfficerID != nil && *complaint.AssignedOfficerID != principal.UserID {
		return nil, fmt.Errorf("%w: complaint %s belongs to another officer", ErrPermissionDenied, complaint.Code)
	}

	from := complaint.Status
	action, err := workflow.Complaint.ActionFor(from, input.Status)
	if err != nil {
		return nil, err
	}
	if action == workflow.ActionAssign || action == workflow.ActionEscalate {
		return nil, fmt.Errorf("%w: use the %s operation", ErrInvalidTransition, action)
	}

	now := s.now()
	notes := cleanText(input.Notes)
	updates := complaint.SetStatus(input.Status, now)
	if action == workflow.ActionResolve && notes != "" {
		updates["resolution_notes"] = notes
	}

	var update *model.ComplaintUpdate
	actor := principal.UserID
	if notes != "" {
		update = &model.ComplaintUpdate{
			ComplaintID: complaint.ID,
			UpdatedByID: &actor,
			UpdateText:  notes,
		}
	}

	err = s.complaintRepo.Transition(ctx, repository.StatusChange{
		ID:      complaint.ID,
		From:    from,
		Updates: updates,
		Log:     statusLog(model.RequestKindComplaint, complaint.ID, statusPtr(from), input.Status, notes, actor),
	}, update)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: complaint changed concurrently", ErrConflict)
		}
		return nil, err
	}

	return s.Get(ctx, principal, complaint.ID)
}

// Escalate hands a complaint to the government authority with high
// priority. It reports false, leaving the complaint untouched, when no
// authority account exists.
func (s *ComplaintService) Escalate(ctx context.Context, principal model.Principal, id uuid.UUID) (bool, error) {
	if err := authorize(principal, CapEscalate); err != nil {
		return false, err
	}

	complaint, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return false, translate(err)
	}

	authorities, err := s.userRepo.CountByRole(ctx, model.UserRoleGovernmentAuthority)
	if err != nil {
		return false, err
	}
	if authorities == 0 {
		return false, nil
	}

	from := complaint.Status
	next, err := workflow.Complaint.Next(from, workflow.ActionEscalate)
	if err != nil {
		return false, err
	}

	updates := complaint.SetStatus(next, s.now())
	updates["priority"] = model.PriorityHigh
	// Escalated complaints return to the pool; any officer may pick them up.
	updates["assigned_officer_id"] = nil

	err = s.complaintRepo.Transition(ctx, repository.StatusChange{
		ID:      complaint.ID,
		From:    from,
		Updates: updates,
		Log:     statusLog(model.RequestKindComplaint, complaint.ID, statusPtr(from), next, "escalated to government authority", principal.UserID),
	}, nil)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return false, fmt.Errorf("%w: complaint changed concurrently", ErrConflict)
		}
		return false, err
	}
	return true, nil
}

// Rate records the filing citizen's 1-5 satisfaction with a resolved complaint.
func (s *ComplaintService) Rate(ctx context.Context, principal model.Principal, id uuid.UUID, rating int) error {
	if err := authorize(principal, CapRateComplaint); err != nil {
		return err
	}
	if err := validateValue("rating", rating, "min=1,max=5"); err != nil {
		return err
	}

	complaint, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if complaint.CitizenID != principal.UserID {
		return ErrNotFound
	}
	if complaint.Status != model.RequestStatusResolved {
		return fmt.Errorf("%w: only resolved complaints can be rated", ErrInvalidTransition)
	}

	ok, err := s.complaintRepo.Rate(ctx, complaint.ID, principal.UserID, rating, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: complaint changed concurrently", ErrConflict)
	}
	return nil
}
