package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmergencyType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Icon        string    `gorm:"type:varchar(50);not null" json:"icon"`
}

func (EmergencyType) TableName() string {
	return "emergency_types"
}

func (t *EmergencyType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type UtilityType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Department  string    `gorm:"type:varchar(100);not null" json:"department"`
	Icon        string    `gorm:"type:varchar(50);not null" json:"icon"`
}

func (UtilityType) TableName() string {
	return "utility_types"
}

func (t *UtilityType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// DefaultEmergencyTypes is the catalog installed on an empty database.
func DefaultEmergencyTypes() []EmergencyType {
	return []EmergencyType{
		{Name: "Medical Emergency", Description: "Medical emergencies including accidents, heart attacks, etc.", Icon: "heartbeat"},
		{Name: "Fire", Description: "Fire incidents in buildings, vehicles, or forests", Icon: "fire"},
		{Name: "Accident", Description: "Road accidents, falls, or other accidents", Icon: "car-crash"},
		{Name: "Crime", Description: "Criminal activities requiring police assistance", Icon: "shield-alt"},
	}
}

// DefaultUtilityTypes is the catalog installed on an empty database.
func DefaultUtilityTypes() []UtilityType {
	return []UtilityType{
		{Name: "Water Supply", Description: "Water supply issues including leaks, low pressure, contamination", Department: "Water Department", Icon: "tint"},
		{Name: "Electricity", Description: "Power outages, electrical faults, billing issues", Department: "Electricity Board", Icon: "bolt"},
		{Name: "Garbage Management", Description: "Garbage collection, waste disposal, cleanliness issues", Department: "Municipal Corporation", Icon: "trash"},
		{Name: "Road Maintenance", Description: "Potholes, road damage, street lighting issues", Department: "Public Works", Icon: "road"},
	}
}
