package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-portal/internal/db/dbtest"
	"service-portal/internal/model"
)

func TestSubmitComplaintNumbersPerCategory(t *testing.T) {
	f := newFixture(t)

	first := f.submitComplaint(t, f.citizen, "Water Supply")
	second := f.submitComplaint(t, f.citizen, "Water Supply")
	power := f.submitComplaint(t, f.citizen, "Electricity")

	assert.Equal(t, "WAT-000001", first.Complaint.Code)
	assert.Equal(t, "WAT-000002", second.Complaint.Code)
	assert.Equal(t, "ELE-000001", power.Complaint.Code)
	assert.Equal(t, model.RequestStatusPending, first.Complaint.Status)
	assert.Equal(t, model.PriorityMedium, first.Complaint.Priority)
	assert.Equal(t, "Water Department", first.Department)
	assert.Nil(t, first.Complaint.AssignedAt)
	assert.Nil(t, first.AssignedOfficer)
}

func TestConcurrentSubmissionsGetUniqueCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	garbage := dbtest.UtilityType(t, f.db, "Garbage Management").ID

	const n = 12
	codes := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := f.complaints.Submit(ctx, f.citizen, SubmitComplaintInput{
				UtilityTypeID: garbage,
				Title:         "Overflowing bin",
				Description:   "not collected",
				Location:      model.Location{Address: "Market Sq"},
			})
			if err != nil {
				errs <- err
				return
			}
			codes <- record.Complaint.Code
		}()
	}
	wg.Wait()
	close(codes)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["GAR-000001"])
	assert.True(t, seen["GAR-000012"])
}

func TestSubmitComplaintValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	water := dbtest.UtilityType(t, f.db, "Water Supply").ID

	cases := map[string]SubmitComplaintInput{
		"critical priority": {UtilityTypeID: water, Title: "t", Description: "d", Priority: model.PriorityCritical, Location: model.Location{Address: "x"}},
		"missing title":     {UtilityTypeID: water, Title: " ", Description: "d", Location: model.Location{Address: "x"}},
		"missing address":   {UtilityTypeID: water, Title: "t", Description: "d"},
		"unknown type":      {UtilityTypeID: dbtest.EmergencyType(t, f.db, "Fire").ID, Title: "t", Description: "d", Location: model.Location{Address: "x"}},
		"long title":        {UtilityTypeID: water, Title: strings.Repeat("t", 201), Description: "d", Location: model.Location{Address: "x"}},
		"lone latitude":     {UtilityTypeID: water, Title: "t", Description: "d", Location: model.Location{Address: "x", Lat: ptr(12.5)}},
	}
	for name, input := range cases {
		_, err := f.complaints.Submit(ctx, f.citizen, input)
		assert.ErrorIs(t, err, ErrValidation, name)
	}

	var count int64
	require.NoError(t, f.db.Model(&model.Complaint{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestComplaintWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := f.submitComplaint(t, f.citizen, "Road Maintenance")
	id := record.Complaint.ID

	assigned, err := f.complaints.Assign(ctx, f.officer, id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAssigned, assigned.Complaint.Status)
	require.NotNil(t, assigned.AssignedOfficer)
	assert.Equal(t, "utility_officer", assigned.AssignedOfficer.Username)
	assert.NotNil(t, assigned.Complaint.AssignedAt)

	_, err = f.complaints.AdvanceStatus(ctx, f.officer, id, AdvanceComplaintInput{Status: model.RequestStatusEscalated})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	progress, err := f.complaints.AdvanceStatus(ctx, f.officer, id, AdvanceComplaintInput{Status: model.RequestStatusInProgress, Notes: "crew on site"})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusInProgress, progress.Complaint.Status)

	resolved, err := f.complaints.AdvanceStatus(ctx, f.officer, id, AdvanceComplaintInput{Status: model.RequestStatusResolved, Notes: "<i>patched</i>"})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusResolved, resolved.Complaint.Status)
	assert.Equal(t, "patched", resolved.Complaint.ResolutionNotes)
	assert.NotNil(t, resolved.Complaint.ResolvedAt)
	require.Len(t, resolved.Complaint.Updates, 2)
	assert.Equal(t, "crew on site", resolved.Complaint.Updates[0].UpdateText)

	_, err = f.complaints.AdvanceStatus(ctx, f.officer, id, AdvanceComplaintInput{Status: model.RequestStatusInProgress})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var logs int64
	require.NoError(t, f.db.Model(&model.RequestStatusLog{}).Where("request_id = ?", id).Count(&logs).Error)
	assert.Equal(t, int64(4), logs)
}

func TestComplaintAssignmentIsExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	second := f.addUser(t, "utility_officer2", model.UserRoleUtilityOfficer)
	record := f.submitComplaint(t, f.citizen, "Electricity")
	id := record.Complaint.ID

	_, err := f.complaints.Assign(ctx, f.officer, id)
	require.NoError(t, err)

	_, err = f.complaints.Assign(ctx, second, id)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
	_, err = f.complaints.AdvanceStatus(ctx, second, id, AdvanceComplaintInput{Status: model.RequestStatusInProgress})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.complaints.Assign(ctx, f.operator, id)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	pending, err := f.complaints.List(ctx, second, ListOptions{Unassigned: true})
	require.NoError(t, err)
	assert.Empty(t, pending)

	mine, err := f.complaints.List(ctx, f.officer, ListOptions{AssignedToMe: true})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, id, mine[0].Complaint.ID)
}

func TestOrphanedComplaintCanBeTakenOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authority := f.addUser(t, "gov_officer", model.UserRoleGovernmentAuthority)
	second := f.addUser(t, "utility_officer2", model.UserRoleUtilityOfficer)
	record := f.submitComplaint(t, f.citizen, "Water Supply")

	_, err := f.complaints.Assign(ctx, f.officer, record.Complaint.ID)
	require.NoError(t, err)

	released, err := f.accounts.DeleteStaff(ctx, authority, f.officer.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	taken, err := f.complaints.Assign(ctx, second, record.Complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAssigned, taken.Complaint.Status)
	require.NotNil(t, taken.AssignedOfficer)
	assert.Equal(t, "utility_officer2", taken.AssignedOfficer.Username)
}

func TestEscalateWithoutAuthorityChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := f.submitComplaint(t, f.citizen, "Water Supply")

	escalated, err := f.complaints.Escalate(ctx, f.officer, record.Complaint.ID)
	require.NoError(t, err)
	assert.False(t, escalated)

	stored, err := f.complaints.Get(ctx, f.officer, record.Complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, stored.Complaint.Status)
	assert.Equal(t, model.PriorityMedium, stored.Complaint.Priority)
	assert.Nil(t, stored.Complaint.EscalatedAt)
}

func TestEscalateAndReassignKeepsFirstAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authority := f.addUser(t, "gov_officer", model.UserRoleGovernmentAuthority)
	record := f.submitComplaint(t, f.citizen, "Garbage Management")
	id := record.Complaint.ID

	first := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	f.complaints.now = func() time.Time { return first }
	_, err := f.complaints.Assign(ctx, f.officer, id)
	require.NoError(t, err)

	f.complaints.now = func() time.Time { return first.Add(time.Hour) }
	escalated, err := f.complaints.Escalate(ctx, f.officer, id)
	require.NoError(t, err)
	assert.True(t, escalated)

	stored, err := f.complaints.Get(ctx, authority, id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusEscalated, stored.Complaint.Status)
	assert.Equal(t, model.PriorityHigh, stored.Complaint.Priority)
	require.NotNil(t, stored.Complaint.EscalatedAt)

	f.complaints.now = func() time.Time { return first.Add(2 * time.Hour) }
	again, err := f.complaints.Assign(ctx, f.officer, id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAssigned, again.Complaint.Status)
	require.NotNil(t, again.Complaint.AssignedAt)
	assert.WithinDuration(t, first, *again.Complaint.AssignedAt, time.Second)

	resolved, err := f.complaints.AdvanceStatus(ctx, authority, id, AdvanceComplaintInput{Status: model.RequestStatusResolved})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusResolved, resolved.Complaint.Status)
}

func TestRateResolvedComplaint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	record := f.submitComplaint(t, f.citizen, "Water Supply")
	id := record.Complaint.ID

	assert.ErrorIs(t, f.complaints.Rate(ctx, f.citizen, id, 5), ErrInvalidTransition)

	_, err := f.complaints.Assign(ctx, f.officer, id)
	require.NoError(t, err)
	_, err = f.complaints.AdvanceStatus(ctx, f.officer, id, AdvanceComplaintInput{Status: model.RequestStatusResolved})
	require.NoError(t, err)

	assert.ErrorIs(t, f.complaints.Rate(ctx, f.citizen, id, 6), ErrValidation)
	assert.ErrorIs(t, f.complaints.Rate(ctx, f.citizen, id, 0), ErrValidation)
	assert.ErrorIs(t, f.complaints.Rate(ctx, f.addUser(t, "bob", model.UserRoleCitizen), id, 4), ErrNotFound)
	assert.ErrorIs(t, f.complaints.Rate(ctx, f.officer, id, 4), ErrPermissionDenied)

	require.NoError(t, f.complaints.Rate(ctx, f.citizen, id, 4))
	stored, err := f.complaints.Get(ctx, f.citizen, id)
	require.NoError(t, err)
	require.NotNil(t, stored.Complaint.SatisfactionRating)
	assert.Equal(t, 4, *stored.Complaint.SatisfactionRating)
}

func TestComplaintVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.addUser(t, "bob", model.UserRoleCitizen)
	record := f.submitComplaint(t, f.citizen, "Electricity")

	_, err := f.complaints.GetByCode(ctx, bob, record.Complaint.Code)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.complaints.Get(ctx, f.driver, record.Complaint.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.complaints.GetByCode(ctx, f.citizen, "ELE-999999")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := f.complaints.GetByCode(ctx, f.citizen, record.Complaint.Code)
	require.NoError(t, err)
	assert.Equal(t, record.Complaint.ID, found.Complaint.ID)

	theirs, err := f.complaints.List(ctx, bob, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, theirs)
	_, err = f.complaints.List(ctx, f.operator, ListOptions{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestEscalatedComplaintReturnsToPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "gov_officer", model.UserRoleGovernmentAuthority)
	other := f.addUser(t, "utility_officer2", model.UserRoleUtilityOfficer)
	record := f.submitComplaint(t, f.citizen, "Water Supply")
	id := record.Complaint.ID

	_, err := f.complaints.Assign(ctx, f.officer, id)
	require.NoError(t, err)
	escalated, err := f.complaints.Escalate(ctx, f.officer, id)
	require.NoError(t, err)
	require.True(t, escalated)

	stored, err := f.complaints.Get(ctx, other, id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusEscalated, stored.Complaint.Status)
	assert.Nil(t, stored.Complaint.AssignedOfficerID)

	taken, err := f.complaints.Assign(ctx, other, id)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAssigned, taken.Complaint.Status)
	require.NotNil(t, taken.Complaint.AssignedOfficerID)
	assert.Equal(t, other.UserID, *taken.Complaint.AssignedOfficerID)

	_, err = f.complaints.Assign(ctx, f.officer, id)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
}
