package service

import (
	"context"

	"service-portal/internal/model"
	"service-portal/internal/repository"
)

type CatalogService struct {
	catalogRepo *repository.CatalogRepository
}

func NewCatalogService(catalogRepo *repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

func (s *CatalogService) EmergencyTypes(ctx context.Context) ([]model.EmergencyType, error) {
	return s.catalogRepo.ListEmergencyTypes(ctx)
}

func (s *CatalogService) UtilityTypes(ctx context.Context) ([]model.UtilityType, error) {
	return s.catalogRepo.ListUtilityTypes(ctx)
}
