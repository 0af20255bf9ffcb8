package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"service-portal/internal/db/dbtest"
	"service-portal/internal/model"
)

func newEmergency(t *testing.T, database *gorm.DB, citizen *model.User) *model.EmergencyRequest {
	t.Helper()
	request := &model.EmergencyRequest{
		CitizenID:       citizen.ID,
		EmergencyTypeID: dbtest.EmergencyType(t, database, "Fire").ID,
		Priority:        model.PriorityHigh,
		Status:          model.RequestStatusPending,
		Address:         "12 Elm St",
		Description:     "smoke from the roof",
	}
	require.NoError(t, NewEmergencyRepository(database).Create(context.Background(), request, nil))
	return request
}

func newComplaint(t *testing.T, database *gorm.DB, citizen *model.User) *model.Complaint {
	t.Helper()
	complaint := &model.Complaint{
		CitizenID:     citizen.ID,
		UtilityTypeID: dbtest.UtilityType(t, database, "Water Supply").ID,
		Title:         "Leak",
		Description:   "water on the street",
		Priority:      model.PriorityMedium,
		Status:        model.RequestStatusPending,
		Address:       "3 Oak Ave",
	}
	require.NoError(t, NewComplaintRepository(database).Create(context.Background(), complaint, "WAT", nil))
	return complaint
}

func TestNextSequenceIsPerPrefix(t *testing.T) {
	database := dbtest.Open(t)

	var got []int64
	for _, prefix := range []string{"WAT", "WAT", "ELE", "WAT"} {
		err := database.Transaction(func(tx *gorm.DB) error {
			seq, err := nextSequence(tx, prefix)
			got = append(got, seq)
			return err
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []int64{1, 2, 1, 3}, got)
}

func TestComplaintCreateAssignsCode(t *testing.T) {
	database := dbtest.Open(t)
	citizen := dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)

	first := newComplaint(t, database, citizen)
	second := newComplaint(t, database, citizen)
	assert.Equal(t, "WAT-000001", first.Code)
	assert.Equal(t, "WAT-000002", second.Code)

	found, err := NewComplaintRepository(database).GetByCode(context.Background(), "WAT-000002")
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)
	require.NotNil(t, found.UtilityType)
	assert.Equal(t, "Water Supply", found.UtilityType.Name)
}

func TestStatusChangeIsCompareAndSet(t *testing.T) {
	database := dbtest.Open(t)
	citizen := dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)
	complaint := newComplaint(t, database, citizen)
	repo := NewComplaintRepository(database)
	ctx := context.Background()

	change := StatusChange{
		ID:      complaint.ID,
		From:    model.RequestStatusPending,
		Updates: map[string]interface{}{"status": model.RequestStatusRejected},
	}
	require.NoError(t, repo.Transition(ctx, change, nil))

	change.Updates = map[string]interface{}{"status": model.RequestStatusEscalated}
	assert.ErrorIs(t, repo.Transition(ctx, change, nil), ErrStaleStatus)

	stored, err := repo.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, stored.Status)
}

func TestStatusChangeGuardAndUpdateNote(t *testing.T) {
	database := dbtest.Open(t)
	citizen := dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)
	officer := dbtest.CreateUser(t, database, "utility_officer", model.UserRoleUtilityOfficer)
	complaint := newComplaint(t, database, citizen)
	repo := NewComplaintRepository(database)
	ctx := context.Background()

	other := uuid.New()
	err := repo.Transition(ctx, StatusChange{
		ID:        complaint.ID,
		From:      model.RequestStatusPending,
		Updates:   map[string]interface{}{"status": model.RequestStatusAssigned},
		Guard:     "assigned_officer_id = ?",
		GuardArgs: []interface{}{other},
	}, nil)
	assert.ErrorIs(t, err, ErrStaleStatus)

	err = repo.Transition(ctx, StatusChange{
		ID:        complaint.ID,
		From:      model.RequestStatusPending,
		Updates:   map[string]interface{}{"status": model.RequestStatusAssigned, "assigned_officer_id": officer.ID},
		Guard:     "(assigned_officer_id IS NULL OR assigned_officer_id = ?)",
		GuardArgs: []interface{}{officer.ID},
	}, &model.ComplaintUpdate{ComplaintID: complaint.ID, UpdatedByID: &officer.ID, UpdateText: "on it"})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedOfficer)
	assert.Equal(t, "utility_officer", stored.AssignedOfficer.Username)
	require.Len(t, stored.Updates, 1)
	assert.Equal(t, "on it", stored.Updates[0].UpdateText)
}

func TestDispatchClaimsVehicleOnce(t *testing.T) {
	database := dbtest.Open(t)
	citizen := dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)
	vehicle := dbtest.CreateVehicle(t, database, "FIRE-001", model.VehicleTypeFireTruck)
	first := newEmergency(t, database, citizen)
	second := newEmergency(t, database, citizen)
	repo := NewEmergencyRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	unit := func(request *model.EmergencyRequest) DispatchUnit {
		return DispatchUnit{
			Change: StatusChange{
				ID:      request.ID,
				From:    model.RequestStatusPending,
				Updates: map[string]interface{}{"status": model.RequestStatusAssigned, "assigned_at": now},
			},
			Dispatch: &model.DispatchRecord{
				EmergencyID: request.ID,
				VehicleID:   vehicle.ID,
				Status:      model.DispatchStatusAssigned,
				AssignedAt:  now,
			},
		}
	}

	require.NoError(t, repo.Dispatch(ctx, unit(first)))
	assert.ErrorIs(t, repo.Dispatch(ctx, unit(second)), ErrVehicleUnavailable)

	untouched, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, untouched.Status)
	assert.Empty(t, untouched.Dispatches)

	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	active := stored.ActiveDispatch()
	require.NotNil(t, active)
	require.NotNil(t, active.Vehicle)
	assert.Equal(t, "FIRE-001", active.Vehicle.VehicleNumber)
	assert.False(t, active.Vehicle.IsAvailable)
}

func TestDispatchRollsBackClaimOnStaleStatus(t *testing.T) {
	database := dbtest.Open(t)
	citizen := dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)
	vehicle := dbtest.CreateVehicle(t, database, "AMB-001", model.VehicleTypeAmbulance)
	request := newEmergency(t, database, citizen)
	repo := NewEmergencyRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	err := repo.Dispatch(ctx, DispatchUnit{
		Change: StatusChange{
			ID:      request.ID,
			From:    model.RequestStatusAssigned,
			Updates: map[string]interface{}{"status": model.RequestStatusAssigned},
		},
		Dispatch: &model.DispatchRecord{EmergencyID: request.ID, VehicleID: vehicle.ID, Status: model.DispatchStatusAssigned, AssignedAt: now},
	})
	assert.ErrorIs(t, err, ErrStaleStatus)

	stored, err := NewVehicleRepository(database).GetByID(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable)
}

func TestCancelReleasesOnlyDispatchedVehicle(t *testing.T) {
	database := dbtest.Open(t)
	citizen := dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)
	dispatched := dbtest.CreateVehicle(t, database, "POL-001", model.VehicleTypePoliceCar)
	busy := dbtest.CreateVehicle(t, database, "POL-002", model.VehicleTypePoliceCar)
	require.NoError(t, database.Model(busy).Update("is_available", false).Error)
	request := newEmergency(t, database, citizen)
	repo := NewEmergencyRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	dispatch := &model.DispatchRecord{EmergencyID: request.ID, VehicleID: dispatched.ID, Status: model.DispatchStatusAssigned, AssignedAt: now}
	require.NoError(t, repo.Dispatch(ctx, DispatchUnit{
		Change:   StatusChange{ID: request.ID, From: model.RequestStatusPending, Updates: map[string]interface{}{"status": model.RequestStatusAssigned}},
		Dispatch: dispatch,
	}))

	require.NoError(t, repo.Cancel(ctx, CancelUnit{
		Change:   StatusChange{ID: request.ID, From: model.RequestStatusAssigned, Updates: map[string]interface{}{"status": model.RequestStatusCancelled}},
		Dispatch: &DispatchAdvance{
			DispatchID:     dispatch.ID,
			VehicleID:      dispatched.ID,
			From:           model.DispatchStatusAssigned,
			To:             model.DispatchStatusCancelled,
			At:             now,
			ReleaseVehicle: true,
		},
	}))

	vehicles := NewVehicleRepository(database)
	freed, err := vehicles.GetByID(ctx, dispatched.ID)
	require.NoError(t, err)
	assert.True(t, freed.IsAvailable)
	other, err := vehicles.GetByID(ctx, busy.ID)
	require.NoError(t, err)
	assert.False(t, other.IsAvailable)

	stored, err := repo.GetDispatch(ctx, dispatch.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DispatchStatusCancelled, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
}

func TestDeleteIfAvailable(t *testing.T) {
	database := dbtest.Open(t)
	repo := NewVehicleRepository(database)
	ctx := context.Background()
	idle := dbtest.CreateVehicle(t, database, "RES-001", model.VehicleTypeRescueVehicle)
	busy := dbtest.CreateVehicle(t, database, "RES-002", model.VehicleTypeRescueVehicle)
	require.NoError(t, database.Model(busy).Update("is_available", false).Error)

	assert.ErrorIs(t, repo.DeleteIfAvailable(ctx, busy.ID), ErrVehicleUnavailable)
	assert.ErrorIs(t, repo.DeleteIfAvailable(ctx, uuid.New()), gorm.ErrRecordNotFound)
	require.NoError(t, repo.DeleteIfAvailable(ctx, idle.ID))

	_, err := repo.GetByID(ctx, idle.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// the number is free again once the vehicle is retired
	count, err := repo.CountByNumber(ctx, "RES-001", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	dbtest.CreateVehicle(t, database, "RES-001", model.VehicleTypeRescueVehicle)
}

func TestDeleteStaffReleasesComplaints(t *testing.T) {
	database := dbtest.Open(t)
	citizen := dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)
	officer := dbtest.CreateUser(t, database, "utility_officer", model.UserRoleUtilityOfficer)
	complaint := newComplaint(t, database, citizen)
	require.NoError(t, database.Model(&model.Complaint{}).Where("id = ?", complaint.ID).
		Updates(map[string]interface{}{"assigned_officer_id": officer.ID, "status": model.RequestStatusAssigned}).Error)

	users := NewUserRepository(database)
	ctx := context.Background()

	released, err := users.DeleteStaff(ctx, officer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	stored, err := NewComplaintRepository(database).GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedOfficerID)
	assert.Equal(t, model.RequestStatusAssigned, stored.Status)

	_, err = users.DeleteStaff(ctx, citizen.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAverageRating(t *testing.T) {
	database := dbtest.Open(t)
	citizen := dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)
	repo := NewComplaintRepository(database)
	ctx := context.Background()

	avg, err := repo.AverageRating(ctx)
	require.NoError(t, err)
	assert.Nil(t, avg)

	ratedAt := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	for _, rating := range []int{4, 5} {
		complaint := newComplaint(t, database, citizen)
		require.NoError(t, database.Model(&model.Complaint{}).Where("id = ?", complaint.ID).
			Update("status", model.RequestStatusResolved).Error)
		ok, err := repo.Rate(ctx, complaint.ID, citizen.ID, rating, ratedAt)
		require.NoError(t, err)
		assert.True(t, ok)

		stored, err := repo.GetByID(ctx, complaint.ID)
		require.NoError(t, err)
		assert.WithinDuration(t, ratedAt, stored.UpdatedAt, time.Second)
	}
	pending := newComplaint(t, database, citizen)
	ok, err := repo.Rate(ctx, pending.ID, citizen.ID, 1, ratedAt)
	require.NoError(t, err)
	assert.False(t, ok)

	avg, err = repo.AverageRating(ctx)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.5, *avg, 0.001)
}
