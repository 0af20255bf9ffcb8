package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmergencyRequest struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CitizenID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"citizen_id"`
	EmergencyTypeID uuid.UUID     `gorm:"type:uuid;not null" json:"emergency_type_id"`
	Priority        Priority      `gorm:"type:varchar(20);not null" json:"priority"`
	Status          RequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	LocationLat     *float64      `json:"location_lat"`
	LocationLng     *float64      `json:"location_lng"`
	Address         string        `gorm:"type:text;not null" json:"address"`
	Landmark        string        `gorm:"type:varchar(200)" json:"landmark"`
	Description     string        `gorm:"type:text;not null" json:"description"`
	ContactNumber   string        `gorm:"type:varchar(15)" json:"contact_number"`
	AdditionalInfo  string        `gorm:"type:text" json:"additional_info"`
	CreatedAt       time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	AssignedAt      *time.Time    `json:"assigned_at"`
	ResolvedAt      *time.Time    `json:"resolved_at"`

	Citizen       *User            `gorm:"foreignKey:CitizenID" json:"-"`
	EmergencyType *EmergencyType   `gorm:"foreignKey:EmergencyTypeID" json:"emergency_type,omitempty"`
	Dispatches    []DispatchRecord `gorm:"foreignKey:EmergencyID" json:"dispatches,omitempty"`
}

func (EmergencyRequest) TableName() string {
	return "emergency_requests"
}

func (e *EmergencyRequest) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *EmergencyRequest) Location() Location {
	return Location{Lat: e.LocationLat, Lng: e.LocationLng, Address: e.Address, Landmark: e.Landmark}
}

// SetStatus moves the request to status and returns the column set to persist.
func (e *EmergencyRequest) SetStatus(status RequestStatus, now time.Time) map[string]interface{} {
	m := Milestones{AssignedAt: e.AssignedAt, ResolvedAt: e.ResolvedAt}
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	for _, column := range m.Stamp(status, now) {
		updates[column] = now
	}
	e.Status = status
	e.AssignedAt = m.AssignedAt
	e.ResolvedAt = m.ResolvedAt
	e.UpdatedAt = now
	return updates
}

// ActiveDispatch returns the newest dispatch that has not finished yet.
func (e *EmergencyRequest) ActiveDispatch() *DispatchRecord {
	var active *DispatchRecord
	for i := range e.Dispatches {
		d := &e.Dispatches[i]
		if !d.Status.Finished() && (active == nil || d.AssignedAt.After(active.AssignedAt)) {
			active = d
		}
	}
	return active
}

type VehicleType string

const (
	VehicleTypeAmbulance     VehicleType = "ambulance"
	VehicleTypeFireTruck     VehicleType = "fire_truck"
	VehicleTypePoliceCar     VehicleType = "police_car"
	VehicleTypeRescueVehicle VehicleType = "rescue_vehicle"
)

func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTypeAmbulance, VehicleTypeFireTruck, VehicleTypePoliceCar, VehicleTypeRescueVehicle:
		return true
	default:
		return false
	}
}

type EmergencyVehicle struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleType     VehicleType    `gorm:"type:varchar(20);not null" json:"vehicle_type"`
	VehicleNumber   string         `gorm:"type:varchar(20);not null;uniqueIndex:uniq_vehicle_number_active,where:deleted_at IS NULL" json:"vehicle_number"`
	DriverName      string         `gorm:"type:varchar(100);not null" json:"driver_name"`
	DriverContact   string         `gorm:"type:varchar(15)" json:"driver_contact"`
	IsAvailable     bool           `gorm:"not null;index" json:"is_available"`
	CurrentLocation string         `gorm:"type:varchar(200)" json:"current_location"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (EmergencyVehicle) TableName() string {
	return "emergency_vehicles"
}

func (v *EmergencyVehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type DispatchStatus string

const (
	DispatchStatusAssigned  DispatchStatus = "assigned"
	DispatchStatusEnRoute   DispatchStatus = "en_route"
	DispatchStatusOnScene   DispatchStatus = "on_scene"
	DispatchStatusCompleted DispatchStatus = "completed"
	DispatchStatusCancelled DispatchStatus = "cancelled"
)

// Finished reports whether the dispatch no longer holds its vehicle.
func (s DispatchStatus) Finished() bool {
	return s == DispatchStatusCompleted || s == DispatchStatusCancelled
}

type DispatchRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmergencyID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"emergency_id"`
	VehicleID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	AssignedByID *uuid.UUID     `gorm:"type:uuid" json:"assigned_by_id"`
	Status       DispatchStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes        string         `gorm:"type:text" json:"notes"`
	AssignedAt   time.Time      `gorm:"not null" json:"assigned_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt  *time.Time     `json:"completed_at"`

	Vehicle *EmergencyVehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

func (DispatchRecord) TableName() string {
	return "dispatch_records"
}

func (d *DispatchRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
