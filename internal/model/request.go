package model

import (
	"time"

	"github.com/paulmach/orb"
)

type RequestKind string

const (
	RequestKindEmergency RequestKind = "emergency"
	RequestKindComplaint RequestKind = "complaint"
)

// RequestStatus is shared by emergencies and complaints; each kind only
// uses the subset its lifecycle table knows about.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusEnRoute    RequestStatus = "en_route"
	RequestStatusOnScene    RequestStatus = "on_scene"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusResolved   RequestStatus = "resolved"
	RequestStatusCancelled  RequestStatus = "cancelled"
	RequestStatusEscalated  RequestStatus = "escalated"
	RequestStatusRejected   RequestStatus = "rejected"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

func (p Priority) ValidForEmergency() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

func (p Priority) ValidForComplaint() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Milestones holds the timestamps that are stamped the first time a
// request enters the matching status and never overwritten afterwards.
type Milestones struct {
	AssignedAt  *time.Time
	ResolvedAt  *time.Time
	EscalatedAt *time.Time
}

// Stamp records now for the milestone belonging to status, if unset.
// It returns the column names that changed.
func (m *Milestones) Stamp(status RequestStatus, now time.Time) []string {
	var changed []string
	switch status {
	case RequestStatusAssigned:
		if m.AssignedAt == nil {
			m.AssignedAt = &now
			changed = append(changed, "assigned_at")
		}
	case RequestStatusResolved:
		if m.ResolvedAt == nil {
			m.ResolvedAt = &now
			changed = append(changed, "resolved_at")
		}
	case RequestStatusEscalated:
		if m.EscalatedAt == nil {
			m.EscalatedAt = &now
			changed = append(changed, "escalated_at")
		}
	}
	return changed
}

type Location struct {
	Lat      *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng      *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
	Address  string   `json:"address"`
	Landmark string   `json:"landmark,omitempty" validate:"max=200"`
}

// Point returns the coordinates as an orb point; ok is false when the
// request was filed with an address only.
func (l Location) Point() (orb.Point, bool) {
	if l.Lat == nil || l.Lng == nil {
		return orb.Point{}, false
	}
	return orb.Point{*l.Lng, *l.Lat}, true
}
