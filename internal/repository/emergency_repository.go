package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"service-portal/internal/model"
)

type EmergencyRepository struct {
	db *gorm.DB
}

func NewEmergencyRepository(db *gorm.DB) *EmergencyRepository {
	return &EmergencyRepository{db: db}
}

type EmergencyFilter struct {
	CitizenID       *uuid.UUID
	DispatchedBy    *uuid.UUID
	Statuses        []model.RequestStatus
	Unassigned      bool
	WithCoordinates bool
	CreatedFrom     *time.Time
	ResolvedFrom    *time.Time
	Limit           int
	Offset          int
}

func (r *EmergencyRepository) List(ctx context.Context, filter EmergencyFilter) ([]model.EmergencyRequest, error) {
	query := r.filtered(ctx, filter)
	query = applyPaging(query, filter.Limit, filter.Offset)

	var requests []model.EmergencyRequest
	if err := query.
		Order("emergency_requests.created_at DESC").
		Preload("EmergencyType").
		Preload("Dispatches").
		Preload("Dispatches.Vehicle", unscoped).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *EmergencyRepository) Count(ctx context.Context, filter EmergencyFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EmergencyRepository) filtered(ctx context.Context, filter EmergencyFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.EmergencyRequest{})

	if filter.CitizenID != nil {
		query = query.Where("emergency_requests.citizen_id = ?", *filter.CitizenID)
	}
	if filter.DispatchedBy != nil {
		query = query.Where("emergency_requests.id IN (?)", r.db.
			Model(&model.DispatchRecord{}).
			Select("emergency_id").
			Where("assigned_by_id = ?", *filter.DispatchedBy))
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("emergency_requests.status IN ?", filter.Statuses)
	}
	if filter.Unassigned {
		query = query.Where("emergency_requests.status = ?", model.RequestStatusPending)
	}
	if filter.WithCoordinates {
		query = query.Where("emergency_requests.location_lat IS NOT NULL AND emergency_requests.location_lng IS NOT NULL")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("emergency_requests.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.ResolvedFrom != nil {
		query = query.Where("emergency_requests.resolved_at >= ?", *filter.ResolvedFrom)
	}
	return query
}

// unscoped lets dispatch history show vehicles retired since.
func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (r *EmergencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.EmergencyRequest, error) {
	var request model.EmergencyRequest
	if err := r.db.WithContext(ctx).
		Preload("EmergencyType").
		Preload("Dispatches", func(db *gorm.DB) *gorm.DB {
			return db.Order("dispatch_records.assigned_at ASC")
		}).
		Preload("Dispatches.Vehicle", unscoped).
		First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *EmergencyRepository) GetDispatch(ctx context.Context, id uuid.UUID) (*model.DispatchRecord, error) {
	var dispatch model.DispatchRecord
	if err := r.db.WithContext(ctx).
		Preload("Vehicle", unscoped).
		First(&dispatch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dispatch, nil
}

func (r *EmergencyRepository) Create(ctx context.Context, request *model.EmergencyRequest, log *model.RequestStatusLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Dispatches", "EmergencyType", "Citizen").Create(request).Error; err != nil {
			return err
		}
		if log != nil {
			log.RequestID = request.ID
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DispatchUnit assigns a vehicle to an emergency.
type DispatchUnit struct {
	Change   StatusChange
	Dispatch *model.DispatchRecord
}

// Dispatch claims the vehicle, moves the emergency and records the dispatch
// in one transaction. The vehicle claim is a conditional update, so two
// operators racing for the same vehicle cannot both win.
func (r *EmergencyRepository) Dispatch(ctx context.Context, unit DispatchUnit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.EmergencyVehicle{}).
			Where("id = ? AND is_available = ?", unit.Dispatch.VehicleID, true).
			Updates(map[string]interface{}{
				"is_available": false,
				"updated_at":   unit.Dispatch.AssignedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVehicleUnavailable
		}

		if err := applyStatusChange(tx, &model.EmergencyRequest{}, unit.Change); err != nil {
			return err
		}

		return tx.Omit("Vehicle").Create(unit.Dispatch).Error
	})
}

// DispatchAdvance moves a dispatch forward together with its emergency.
type DispatchAdvance struct {
	DispatchID     uuid.UUID
	VehicleID      uuid.UUID
	From           model.DispatchStatus
	To             model.DispatchStatus
	Notes          string
	At             time.Time
	ReleaseVehicle bool
	Change         StatusChange
}

func (r *EmergencyRepository) AdvanceDispatch(ctx context.Context, unit DispatchAdvance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return advanceDispatch(tx, unit)
	})
}

// CancelUnit cancels an emergency and, if present, its active dispatch.
type CancelUnit struct {
	Change   StatusChange
	Dispatch *DispatchAdvance
}

func (r *EmergencyRepository) Cancel(ctx context.Context, unit CancelUnit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if unit.Dispatch != nil {
			if err := advanceDispatch(tx, *unit.Dispatch); err != nil {
				return err
			}
		}
		return applyStatusChange(tx, &model.EmergencyRequest{}, unit.Change)
	})
}

func advanceDispatch(tx *gorm.DB, unit DispatchAdvance) error {
	data := map[string]interface{}{
		"status":     unit.To,
		"updated_at": unit.At,
	}
	if unit.Notes != "" {
		data["notes"] = unit.Notes
	}
	if unit.To.Finished() {
		data["completed_at"] = unit.At
	}

	res := tx.Model(&model.DispatchRecord{}).
		Where("id = ? AND status = ?", unit.DispatchID, unit.From).
		Updates(data)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}

	if unit.Change.Updates != nil {
		if err := applyStatusChange(tx, &model.EmergencyRequest{}, unit.Change); err != nil {
			return err
		}
	}

	if unit.ReleaseVehicle {
		// Only the vehicle recorded on this dispatch is released.
		if err := tx.Model(&model.EmergencyVehicle{}).
			Unscoped().
			Where("id = ?", unit.VehicleID).
			Updates(map[string]interface{}{
				"is_available": true,
				"updated_at":   unit.At,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// ResponseTimes returns assigned_at - created_at for emergencies assigned
// since from.
func (r *EmergencyRepository) ResponseTimes(ctx context.Context, from *time.Time) ([]time.Duration, error) {
	type row struct {
		CreatedAt  time.Time
		AssignedAt *time.Time
	}
	query := r.db.WithContext(ctx).
		Model(&model.EmergencyRequest{}).
		Select("created_at, assigned_at").
		Where("assigned_at IS NOT NULL")
	if from != nil {
		query = query.Where("assigned_at >= ?", *from)
	}
	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]time.Duration, 0, len(rows))
	for _, r := range rows {
		if r.AssignedAt != nil {
			out = append(out, r.AssignedAt.Sub(r.CreatedAt))
		}
	}
	return out, nil
}

// CountActiveDispatches counts dispatches currently holding a vehicle.
func (r *EmergencyRepository) CountActiveDispatches(ctx context.Context, statuses ...model.DispatchStatus) (int64, error) {
	if len(statuses) == 0 {
		statuses = []model.DispatchStatus{model.DispatchStatusAssigned, model.DispatchStatusEnRoute, model.DispatchStatusOnScene}
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.DispatchRecord{}).
		Where("status IN ?", statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EmergencyRepository) CountCompletedDispatchesSince(ctx context.Context, from time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.DispatchRecord{}).
		Where("status = ? AND completed_at >= ?", model.DispatchStatusCompleted, from).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
