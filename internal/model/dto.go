package model

import "github.com/google/uuid"

type VehicleBrief struct {
	ID            uuid.UUID   `json:"id"`
	VehicleType   VehicleType `json:"vehicle_type"`
	VehicleNumber string      `json:"vehicle_number"`
	DriverName    string      `json:"driver_name"`
	DriverContact string      `json:"driver_contact"`
}

type DispatchBrief struct {
	ID      uuid.UUID      `json:"id"`
	Status  DispatchStatus `json:"status"`
	Vehicle *VehicleBrief  `json:"vehicle"`
}

type EmergencyRecord struct {
	Request        EmergencyRequest `json:"request"`
	TypeName       string           `json:"type_name"`
	Location       Location         `json:"location"`
	ActiveDispatch *DispatchBrief   `json:"active_dispatch"`
}

type ComplaintRecord struct {
	Complaint       Complaint  `json:"complaint"`
	TypeName        string     `json:"type_name"`
	Department      string     `json:"department"`
	Location        Location   `json:"location"`
	AssignedOfficer *UserBrief `json:"assigned_officer"`
}

type DashboardStat struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

type DashboardSummary struct {
	Role  UserRole        `json:"role"`
	Title string          `json:"title"`
	Stats []DashboardStat `json:"stats"`
}
