package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"service-portal/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

type VehicleFilter struct {
	AvailableOnly bool
	Types         []model.VehicleType
	Limit         int
	Offset        int
}

func (r *VehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]model.EmergencyVehicle, error) {
	query := r.filtered(ctx, filter)
	query = applyPaging(query, filter.Limit, filter.Offset)

	var vehicles []model.EmergencyVehicle
	if err := query.Order("vehicle_type ASC, vehicle_number ASC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *VehicleRepository) Count(ctx context.Context, filter VehicleFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VehicleRepository) filtered(ctx context.Context, filter VehicleFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.EmergencyVehicle{})
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if len(filter.Types) > 0 {
		query = query.Where("vehicle_type IN ?", filter.Types)
	}
	return query
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.EmergencyVehicle, error) {
	var vehicle model.EmergencyVehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// CountByNumber counts live vehicles carrying number, ignoring exclude.
func (r *VehicleRepository) CountByNumber(ctx context.Context, number string, exclude *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.EmergencyVehicle{}).Where("vehicle_number = ?", number)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.EmergencyVehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) Update(ctx context.Context, id uuid.UUID, data map[string]interface{}) error {
	data["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.EmergencyVehicle{}).
		Where("id = ?", id).
		Updates(data)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteIfAvailable soft-deletes a vehicle that is not out on a dispatch.
// An unknown id yields gorm.ErrRecordNotFound, a busy vehicle
// ErrVehicleUnavailable.
func (r *VehicleRepository) DeleteIfAvailable(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND is_available = ?", id, true).Delete(&model.EmergencyVehicle{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		var vehicle model.EmergencyVehicle
		if err := tx.First(&vehicle, "id = ?", id).Error; err != nil {
			return err
		}
		return ErrVehicleUnavailable
	})
}
