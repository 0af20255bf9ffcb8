package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Complaint struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Code               string        `gorm:"column:complaint_code;type:varchar(20);not null;uniqueIndex" json:"complaint_id"`
	CitizenID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"citizen_id"`
	UtilityTypeID      uuid.UUID     `gorm:"type:uuid;not null" json:"utility_type_id"`
	Title              string        `gorm:"type:varchar(200);not null" json:"title"`
	Description        string        `gorm:"type:text;not null" json:"description"`
	Priority           Priority      `gorm:"type:varchar(20);not null" json:"priority"`
	Status             RequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	LocationLat        *float64      `json:"location_lat"`
	LocationLng        *float64      `json:"location_lng"`
	Address            string        `gorm:"type:text;not null" json:"address"`
	Landmark           string        `gorm:"type:varchar(200)" json:"landmark"`
	AssignedOfficerID  *uuid.UUID    `gorm:"type:uuid;index" json:"assigned_officer_id"`
	CreatedAt          time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	AssignedAt         *time.Time    `json:"assigned_at"`
	ResolvedAt         *time.Time    `json:"resolved_at"`
	EscalatedAt        *time.Time    `json:"escalated_at"`
	ResolutionNotes    string        `gorm:"type:text" json:"resolution_notes"`
	SatisfactionRating *int          `json:"satisfaction_rating"`

	Citizen         *User             `gorm:"foreignKey:CitizenID" json:"-"`
	UtilityType     *UtilityType      `gorm:"foreignKey:UtilityTypeID" json:"utility_type,omitempty"`
	AssignedOfficer *User             `gorm:"foreignKey:AssignedOfficerID" json:"-"`
	Updates         []ComplaintUpdate `gorm:"foreignKey:ComplaintID" json:"updates,omitempty"`
}

func (Complaint) TableName() string {
	return "complaints"
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Complaint) Location() Location {
	return Location{Lat: c.LocationLat, Lng: c.LocationLng, Address: c.Address, Landmark: c.Landmark}
}

// SetStatus moves the complaint to status and returns the column set to persist.
func (c *Complaint) SetStatus(status RequestStatus, now time.Time) map[string]interface{} {
	m := Milestones{AssignedAt: c.AssignedAt, ResolvedAt: c.ResolvedAt, EscalatedAt: c.EscalatedAt}
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	for _, column := range m.Stamp(status, now) {
		updates[column] = now
	}
	c.Status = status
	c.AssignedAt = m.AssignedAt
	c.ResolvedAt = m.ResolvedAt
	c.EscalatedAt = m.EscalatedAt
	c.UpdatedAt = now
	return updates
}

// ComplaintCodePrefix derives the three letter prefix of a complaint code
// from the utility type name.
func ComplaintCodePrefix(categoryName string) string {
	name := strings.ToUpper(strings.TrimSpace(categoryName))
	runes := []rune(name)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}

func FormatComplaintCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// ComplaintSequence is the per-prefix counter backing complaint codes.
type ComplaintSequence struct {
	Prefix    string `gorm:"type:varchar(8);primaryKey"`
	LastValue int64  `gorm:"not null"`
}

func (ComplaintSequence) TableName() string {
	return "complaint_sequences"
}

type ComplaintUpdate struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID uuid.UUID  `gorm:"type:uuid;not null;index" json:"complaint_id"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updated_by_id"`
	UpdateText  string     `gorm:"type:text;not null" json:"update_text"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (ComplaintUpdate) TableName() string {
	return "complaint_updates"
}

func (u *ComplaintUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
