package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"service-portal/internal/model"
	"service-portal/internal/repository"
)

type VehicleService struct {
	vehicleRepo  *repository.VehicleRepository
	defaultLimit int
}

func NewVehicleService(vehicleRepo *repository.VehicleRepository, defaultLimit int) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo, defaultLimit: defaultLimit}
}

type ListVehiclesOptions struct {
	AvailableOnly bool
	Types         []model.VehicleType
	Limit         int
	Offset        int
}

// List returns the fleet. With AvailableOnly it yields the assignment
// candidates as of now; availability is re-checked when assigning.
func (s *VehicleService) List(ctx context.Context, principal model.Principal, opts ListVehiclesOptions) ([]model.EmergencyVehicle, error) {
	if err := authorize(principal, CapViewEmergencies); err != nil {
		return nil, err
	}
	for _, t := range opts.Types {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown vehicle type %q", ErrValidation, t)
		}
	}
	return s.vehicleRepo.List(ctx, repository.VehicleFilter{
		AvailableOnly: opts.AvailableOnly,
		Types:         opts.Types,
		Limit:         pageLimit(opts.Limit, s.defaultLimit),
		Offset:        opts.Offset,
	})
}

type VehicleInput struct {
	VehicleType     model.VehicleType `json:"vehicle_type"`
	VehicleNumber   string            `json:"vehicle_number" validate:"max=20"`
	DriverName      string            `json:"driver_name" validate:"max=100"`
	DriverContact   string            `json:"driver_contact" validate:"max=15"`
	CurrentLocation string            `json:"current_location" validate:"max=200"`
}

func (s *VehicleService) Create(ctx context.Context, principal model.Principal, input VehicleInput) (*model.EmergencyVehicle, error) {
	if err := authorize(principal, CapManageVehicles); err != nil {
		return nil, err
	}
	input.VehicleNumber = strings.TrimSpace(input.VehicleNumber)
	input.DriverContact = strings.TrimSpace(input.DriverContact)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.VehicleType.Valid() {
		return nil, fmt.Errorf("%w: unknown vehicle type %q", ErrValidation, input.VehicleType)
	}
	number, err := requireText("vehicle_number", strings.ToUpper(input.VehicleNumber))
	if err != nil {
		return nil, err
	}
	driver, err := requireText("driver_name", input.DriverName)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNumberFree(ctx, number, nil); err != nil {
		return nil, err
	}

	vehicle := &model.EmergencyVehicle{
		VehicleType:     input.VehicleType,
		VehicleNumber:   number,
		DriverName:      driver,
		DriverContact:   input.DriverContact,
		IsAvailable:     true,
		CurrentLocation: cleanText(input.CurrentLocation),
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: vehicle number %s is in use", ErrConflict, number)
		}
		return nil, err
	}
	return vehicle, nil
}

// VehicleUpdate carries the fields to change; nil leaves a field as is.
// Availability is owned by the dispatch workflow and cannot be edited.
type VehicleUpdate struct {
	VehicleType     *model.VehicleType `json:"vehicle_type"`
	VehicleNumber   *string            `json:"vehicle_number" validate:"omitempty,max=20"`
	DriverName      *string            `json:"driver_name" validate:"omitempty,max=100"`
	DriverContact   *string            `json:"driver_contact" validate:"omitempty,max=15"`
	CurrentLocation *string            `json:"current_location" validate:"omitempty,max=200"`
}

func (s *VehicleService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input VehicleUpdate) (*model.EmergencyVehicle, error) {
	if err := authorize(principal, CapManageVehicles); err != nil {
		return nil, err
	}
	if input.VehicleNumber != nil {
		input.VehicleNumber = ptrTo(strings.TrimSpace(*input.VehicleNumber))
	}
	if input.DriverContact != nil {
		input.DriverContact = ptrTo(strings.TrimSpace(*input.DriverContact))
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	data := map[string]interface{}{}
	if input.VehicleType != nil {
		if !input.VehicleType.Valid() {
			return nil, fmt.Errorf("%w: unknown vehicle type %q", ErrValidation, *input.VehicleType)
		}
		data["vehicle_type"] = *input.VehicleType
	}
	if input.VehicleNumber != nil {
		number, err := requireText("vehicle_number", strings.ToUpper(*input.VehicleNumber))
		if err != nil {
			return nil, err
		}
		if err := s.ensureNumberFree(ctx, number, &id); err != nil {
			return nil, err
		}
		data["vehicle_number"] = number
	}
	if input.DriverName != nil {
		driver, err := requireText("driver_name", *input.DriverName)
		if err != nil {
			return nil, err
		}
		data["driver_name"] = driver
	}
	if input.DriverContact != nil {
		data["driver_contact"] = *input.DriverContact
	}
	if input.CurrentLocation != nil {
		data["current_location"] = cleanText(*input.CurrentLocation)
	}

	if len(data) > 0 {
		if err := s.vehicleRepo.Update(ctx, id, data); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: vehicle number is in use", ErrConflict)
			}
			return nil, translate(err)
		}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return vehicle, nil
}

// Delete retires a vehicle. Vehicles out on a dispatch cannot be removed.
func (s *VehicleService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if err := authorize(principal, CapManageVehicles); err != nil {
		return err
	}
	if err := s.vehicleRepo.DeleteIfAvailable(ctx, id); err != nil {
		if errors.Is(err, repository.ErrVehicleUnavailable) {
			return fmt.Errorf("%w: vehicle is on an active dispatch", ErrResourceUnavailable)
		}
		return translate(err)
	}
	return nil
}

func (s *VehicleService) ensureNumberFree(ctx context.Context, number string, exclude *uuid.UUID) error {
	count, err := s.vehicleRepo.CountByNumber(ctx, number, exclude)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: vehicle number %s is in use", ErrConflict, number)
	}
	return nil
}

func ptrTo(s string) *string {
	return &s
}
