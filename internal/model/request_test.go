package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatusStampsResolvedOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(2 * time.Hour)

	req := &EmergencyRequest{Status: RequestStatusOnScene}
	updates := req.SetStatus(RequestStatusResolved, first)
	require.NotNil(t, req.ResolvedAt)
	assert.Equal(t, first, *req.ResolvedAt)
	assert.Contains(t, updates, "resolved_at")

	updates = req.SetStatus(RequestStatusResolved, later)
	assert.Equal(t, first, *req.ResolvedAt)
	assert.NotContains(t, updates, "resolved_at")
	assert.Equal(t, later, req.UpdatedAt)
}

func TestComplaintSetStatusMilestones(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &Complaint{Status: RequestStatusPending}

	c.SetStatus(RequestStatusAssigned, now)
	c.SetStatus(RequestStatusEscalated, now.Add(time.Minute))
	c.SetStatus(RequestStatusAssigned, now.Add(time.Hour))

	require.NotNil(t, c.AssignedAt)
	assert.Equal(t, now, *c.AssignedAt)
	require.NotNil(t, c.EscalatedAt)
	assert.Equal(t, now.Add(time.Minute), *c.EscalatedAt)
	assert.Nil(t, c.ResolvedAt)
}

func TestComplaintCode(t *testing.T) {
	assert.Equal(t, "WAT", ComplaintCodePrefix("Water Supply"))
	assert.Equal(t, "EL", ComplaintCodePrefix(" el"))
	assert.Equal(t, "WAT-000042", FormatComplaintCode("WAT", 42))
}

func TestLocationCoordinates(t *testing.T) {
	lat, lng := 51.5, -0.12
	loc := Location{Lat: &lat, Lng: &lng, Address: "1 High St"}
	p, ok := loc.Point()
	require.True(t, ok)
	assert.Equal(t, lng, p.Lon())
	assert.Equal(t, lat, p.Lat())

	_, ok = Location{Lat: &lat}.Point()
	assert.False(t, ok)
	_, ok = Location{Address: "no coords"}.Point()
	assert.False(t, ok)
}

func TestActiveDispatchPicksNewestUnfinished(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	req := &EmergencyRequest{Dispatches: []DispatchRecord{
		{Status: DispatchStatusCancelled, AssignedAt: base},
		{Status: DispatchStatusEnRoute, AssignedAt: base.Add(time.Minute)},
	}}
	active := req.ActiveDispatch()
	require.NotNil(t, active)
	assert.Equal(t, DispatchStatusEnRoute, active.Status)

	req.Dispatches[1].Status = DispatchStatusCompleted
	assert.Nil(t, req.ActiveDispatch())
}
