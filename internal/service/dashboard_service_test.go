package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"service-portal/internal/db/dbtest"
	"service-portal/internal/model"
)

func statValue(t *testing.T, summary *model.DashboardSummary, key string) interface{} {
	t.Helper()
	for _, stat := range summary.Stats {
		if stat.Key == key {
			return stat.Value
		}
	}
	t.Fatalf("stat %s missing from %s", key, summary.Title)
	return nil
}

func TestDashboardPerRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authority := f.addUser(t, "gov_officer", model.UserRoleGovernmentAuthority)
	dbtest.CreateVehicle(t, f.db, "AMB-001", model.VehicleTypeAmbulance)
	dbtest.CreateVehicle(t, f.db, "AMB-002", model.VehicleTypeAmbulance)

	first := f.submitEmergency(t, f.citizen, "Medical Emergency", "1 First St")
	f.submitEmergency(t, f.citizen, "Fire", "2 Second St")
	complaint := f.submitComplaint(t, f.citizen, "Water Supply")

	dispatch, err := f.emergencies.Assign(ctx, f.operator, first.Request.ID, AssignVehicleInput{VehicleID: f.vehicle(t, "AMB-001").ID})
	require.NoError(t, err)
	_, err = f.emergencies.AdvanceDispatch(ctx, f.driver, dispatch.ID, AdvanceDispatchInput{Status: model.DispatchStatusOnScene})
	require.NoError(t, err)
	_, err = f.complaints.Assign(ctx, f.officer, complaint.Complaint.ID)
	require.NoError(t, err)

	citizen, err := f.dashboards.Summary(ctx, f.citizen)
	require.NoError(t, err)
	assert.Equal(t, int64(2), statValue(t, citizen, "my_emergencies"))
	assert.Equal(t, int64(2), statValue(t, citizen, "my_open_emergencies"))
	assert.Equal(t, int64(1), statValue(t, citizen, "my_complaints"))

	operator, err := f.dashboards.Summary(ctx, f.operator)
	require.NoError(t, err)
	assert.Equal(t, int64(2), statValue(t, operator, "active_emergencies"))
	assert.Equal(t, int64(1), statValue(t, operator, "available_vehicles"))
	assert.Equal(t, int64(1), statValue(t, operator, "on_scene"))

	driver, err := f.dashboards.Summary(ctx, f.driver)
	require.NoError(t, err)
	assert.Equal(t, int64(1), statValue(t, driver, "active_dispatches"))

	officer, err := f.dashboards.Summary(ctx, f.officer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), statValue(t, officer, "pending_complaints"))
	assert.Equal(t, int64(1), statValue(t, officer, "assigned_to_me"))

	gov, err := f.dashboards.Summary(ctx, authority)
	require.NoError(t, err)
	assert.Equal(t, int64(2), statValue(t, gov, "total_emergencies"))
	assert.Nil(t, statValue(t, gov, "avg_satisfaction"))
	assert.IsType(t, float64(0), statValue(t, gov, "avg_response_minutes"))

	_, err = f.dashboards.Summary(ctx, model.Principal{Role: "mayor"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAverageMinutes(t *testing.T) {
	assert.Zero(t, averageMinutes(nil))
}

func TestExportWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authority := f.addUser(t, "gov_officer", model.UserRoleGovernmentAuthority)
	dbtest.CreateVehicle(t, f.db, "FIRE-001", model.VehicleTypeFireTruck)

	record := f.submitEmergency(t, f.citizen, "Fire", "12 Elm St")
	_, err := f.emergencies.Assign(ctx, f.operator, record.Request.ID, AssignVehicleInput{VehicleID: f.vehicle(t, "FIRE-001").ID})
	require.NoError(t, err)
	complaint := f.submitComplaint(t, f.citizen, "Electricity")

	_, err = f.reports.ExportXLSX(ctx, f.operator, ReportOptions{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	data, err := f.reports.ExportXLSX(ctx, authority, ReportOptions{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Emergencies", "Complaints"}, book.GetSheetList())

	rows, err := book.GetRows("Emergencies")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Type", rows[0][1])
	assert.Equal(t, record.Request.ID.String(), rows[1][0])
	assert.Equal(t, "Fire", rows[1][1])
	assert.Equal(t, "assigned", rows[1][3])
	assert.Equal(t, "12 Elm St", rows[1][4])
	assert.Equal(t, "FIRE-001", rows[1][8])

	rows, err = book.GetRows("Complaints")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, complaint.Complaint.Code, rows[1][0])
	assert.Equal(t, "Electricity Board", rows[1][2])
}
