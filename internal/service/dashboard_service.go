package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"service-portal/internal/model"
	"service-portal/internal/repository"
)

var openEmergencyStatuses = []model.RequestStatus{
	model.RequestStatusPending,
	model.RequestStatusAssigned,
	model.RequestStatusEnRoute,
	model.RequestStatusOnScene,
}

var openComplaintStatuses = []model.RequestStatus{
	model.RequestStatusPending,
	model.RequestStatusAssigned,
	model.RequestStatusInProgress,
	model.RequestStatusEscalated,
}

type DashboardService struct {
	emergencyRepo *repository.EmergencyRepository
	complaintRepo *repository.ComplaintRepository
	vehicleRepo   *repository.VehicleRepository
	now           func() time.Time
}

func NewDashboardService(
	emergencyRepo *repository.EmergencyRepository,
	complaintRepo *repository.ComplaintRepository,
	vehicleRepo *repository.VehicleRepository,
) *DashboardService {
	return &DashboardService{
		emergencyRepo: emergencyRepo,
		complaintRepo: complaintRepo,
		vehicleRepo:   vehicleRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Summary computes the statistics shown on the principal's dashboard.
func (s *DashboardService) Summary(ctx context.Context, principal model.Principal) (*model.DashboardSummary, error) {
	c := &counter{ctx: ctx}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	summary := &model.DashboardSummary{Role: principal.Role}
	switch principal.Role {
	case model.UserRoleCitizen:
		me := &principal.UserID
		summary.Title = "Citizen Dashboard"
		summary.Stats = []model.DashboardStat{
			c.emergencies("my_emergencies", "My Emergencies", s.emergencyRepo, repository.EmergencyFilter{CitizenID: me}),
			c.emergencies("my_open_emergencies", "Open Emergencies", s.emergencyRepo, repository.EmergencyFilter{CitizenID: me, Statuses: openEmergencyStatuses}),
			c.complaints("my_complaints", "My Complaints", s.complaintRepo, repository.ComplaintFilter{CitizenID: me}),
			c.complaints("my_open_complaints", "Open Complaints", s.complaintRepo, repository.ComplaintFilter{CitizenID: me, Statuses: openComplaintStatuses}),
		}

	case model.UserRoleGovernmentAuthority:
		resolvedEmergencies := c.count(s.emergencyRepo.Count(ctx, repository.EmergencyFilter{Statuses: []model.RequestStatus{model.RequestStatusResolved}}))
		resolvedComplaints := c.count(s.complaintRepo.Count(ctx, repository.ComplaintFilter{Statuses: []model.RequestStatus{model.RequestStatusResolved}}))
		summary.Title = "Government Dashboard"
		summary.Stats = []model.DashboardStat{
			c.emergencies("total_emergencies", "Total Emergencies", s.emergencyRepo, repository.EmergencyFilter{}),
			{Key: "avg_response_minutes", Label: "Avg Response Time (min)", Value: s.averageResponseMinutes(c)},
			c.complaints("pending_complaints", "Pending Complaints", s.complaintRepo, repository.ComplaintFilter{Statuses: []model.RequestStatus{model.RequestStatusPending}}),
			c.complaints("escalated_complaints", "Escalated Complaints", s.complaintRepo, repository.ComplaintFilter{Statuses: []model.RequestStatus{model.RequestStatusEscalated}}),
			{Key: "resolved_issues", Label: "Resolved Issues", Value: resolvedEmergencies + resolvedComplaints},
			{Key: "avg_satisfaction", Label: "Avg Satisfaction", Value: s.averageRating(c)},
		}

	case model.UserRoleUtilityOfficer:
		me := &principal.UserID
		summary.Title = "Utility Management"
		summary.Stats = []model.DashboardStat{
			c.complaints("pending_complaints", "Pending Complaints", s.complaintRepo, repository.ComplaintFilter{Unassigned: true}),
			c.complaints("in_progress", "In Progress", s.complaintRepo, repository.ComplaintFilter{AssignedOfficerID: me, Statuses: []model.RequestStatus{model.RequestStatusInProgress}}),
			c.complaints("resolved_today", "Resolved Today", s.complaintRepo, repository.ComplaintFilter{ResolvedFrom: &today}),
			c.complaints("assigned_to_me", "Assigned To Me", s.complaintRepo, repository.ComplaintFilter{AssignedOfficerID: me, Statuses: openComplaintStatuses}),
		}

	case model.UserRoleEmergencyOperator:
		summary.Title = "Emergency Operations"
		summary.Stats = []model.DashboardStat{
			c.emergencies("active_emergencies", "Active Emergencies", s.emergencyRepo, repository.EmergencyFilter{Statuses: openEmergencyStatuses}),
			{Key: "available_vehicles", Label: "Available Vehicles", Value: c.count(s.vehicleRepo.Count(ctx, repository.VehicleFilter{AvailableOnly: true}))},
			c.emergencies("on_scene", "On Scene", s.emergencyRepo, repository.EmergencyFilter{Statuses: []model.RequestStatus{model.RequestStatusOnScene}}),
			c.emergencies("resolved_today", "Resolved Today", s.emergencyRepo, repository.EmergencyFilter{ResolvedFrom: &today}),
		}

	case model.UserRoleVehicleDriver:
		summary.Title = "Driver Dashboard"
		summary.Stats = []model.DashboardStat{
			{Key: "active_dispatches", Label: "Active Dispatches", Value: c.count(s.emergencyRepo.CountActiveDispatches(ctx))},
			{Key: "available_vehicles", Label: "Available Vehicles", Value: c.count(s.vehicleRepo.Count(ctx, repository.VehicleFilter{AvailableOnly: true}))},
			{Key: "completed_today", Label: "Completed Today", Value: c.count(s.emergencyRepo.CountCompletedDispatchesSince(ctx, today))},
		}

	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrPermissionDenied, principal.Role)
	}

	if c.err != nil {
		return nil, c.err
	}
	return summary, nil
}

func (s *DashboardService) averageResponseMinutes(c *counter) float64 {
	if c.err != nil {
		return 0
	}
	durations, err := s.emergencyRepo.ResponseTimes(c.ctx, nil)
	if err != nil {
		c.err = err
		return 0
	}
	return averageMinutes(durations)
}

func (s *DashboardService) averageRating(c *counter) *float64 {
	if c.err != nil {
		return nil
	}
	avg, err := s.complaintRepo.AverageRating(c.ctx)
	if err != nil {
		c.err = err
		return nil
	}
	if avg != nil {
		rounded := math.Round(*avg*10) / 10
		return &rounded
	}
	return nil
}

func averageMinutes(durations []time.Duration) float64 {
	if len(durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	minutes := (total / time.Duration(len(durations))).Minutes()
	return math.Round(minutes*10) / 10
}

// counter keeps the first query error so a summary can be assembled as a
// flat list.
type counter struct {
	ctx context.Context
	err error
}

func (c *counter) count(n int64, err error) int64 {
	if c.err == nil && err != nil {
		c.err = err
	}
	return n
}

func (c *counter) emergencies(key, label string, repo *repository.EmergencyRepository, filter repository.EmergencyFilter) model.DashboardStat {
	var n int64
	if c.err == nil {
		n = c.count(repo.Count(c.ctx, filter))
	}
	return model.DashboardStat{Key: key, Label: label, Value: n}
}

func (c *counter) complaints(key, label string, repo *repository.ComplaintRepository, filter repository.ComplaintFilter) model.DashboardStat {
	var n int64
	if c.err == nil {
		n = c.count(repo.Count(c.ctx, filter))
	}
	return model.DashboardStat{Key: key, Label: label, Value: n}
}
