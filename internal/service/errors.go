package service

import (
	"errors"

	"gorm.io/gorm"

	"service-portal/internal/repository"
	"service-portal/internal/workflow"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFound            = errors.New("not found")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrAlreadyAssigned     = errors.New("already assigned")
	ErrInvalidTransition   = workflow.ErrInvalidTransition
	ErrConflict            = errors.New("conflict")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// translate maps storage errors onto the service vocabulary.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrVehicleUnavailable):
		return ErrResourceUnavailable
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
