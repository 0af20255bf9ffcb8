package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"service-portal/internal/model"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListEmergencyTypes(ctx context.Context) ([]model.EmergencyType, error) {
	var types []model.EmergencyType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *CatalogRepository) ListUtilityTypes(ctx context.Context) ([]model.UtilityType, error) {
	var types []model.UtilityType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *CatalogRepository) GetEmergencyType(ctx context.Context, id uuid.UUID) (*model.EmergencyType, error) {
	var et model.EmergencyType
	if err := r.db.WithContext(ctx).First(&et, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &et, nil
}

func (r *CatalogRepository) GetUtilityType(ctx context.Context, id uuid.UUID) (*model.UtilityType, error) {
	var ut model.UtilityType
	if err := r.db.WithContext(ctx).First(&ut, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ut, nil
}
