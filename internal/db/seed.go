package db

import (
	"context"

	"gorm.io/gorm"

	"service-portal/internal/model"
)

// SeedCatalogs installs the default emergency and utility types into empty
// catalog tables. Tables that already hold entries are left alone, so the
// call is safe to repeat on every start.
func SeedCatalogs(ctx context.Context, db *gorm.DB) (int, error) {
	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.EmergencyType{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			defaults := model.DefaultEmergencyTypes()
			if err := tx.Create(&defaults).Error; err != nil {
				return err
			}
			inserted += len(defaults)
		}

		if err := tx.Model(&model.UtilityType{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			defaults := model.DefaultUtilityTypes()
			if err := tx.Create(&defaults).Error; err != nil {
				return err
			}
			inserted += len(defaults)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// SampleFleet is the demo vehicle roster installed by the seed command.
func SampleFleet() []model.EmergencyVehicle {
	return []model.EmergencyVehicle{
		{VehicleType: model.VehicleTypeAmbulance, VehicleNumber: "AMB-001", DriverName: "John Smith", DriverContact: "9876543210", CurrentLocation: "Central Hospital"},
		{VehicleType: model.VehicleTypeAmbulance, VehicleNumber: "AMB-002", DriverName: "Sarah Johnson", DriverContact: "9876543211", CurrentLocation: "North Zone"},
		{VehicleType: model.VehicleTypeFireTruck, VehicleNumber: "FIRE-001", DriverName: "Mike Brown", DriverContact: "9876543212", CurrentLocation: "Fire Station 1"},
		{VehicleType: model.VehicleTypeFireTruck, VehicleNumber: "FIRE-002", DriverName: "David Wilson", DriverContact: "9876543213", CurrentLocation: "Fire Station 2"},
		{VehicleType: model.VehicleTypePoliceCar, VehicleNumber: "POL-001", DriverName: "Robert Davis", DriverContact: "9876543214", CurrentLocation: "Police Station A"},
		{VehicleType: model.VehicleTypePoliceCar, VehicleNumber: "POL-002", DriverName: "James Miller", DriverContact: "9876543215", CurrentLocation: "Police Station B"},
		{VehicleType: model.VehicleTypeRescueVehicle, VehicleNumber: "RES-001", DriverName: "Tom Anderson", DriverContact: "9876543216", CurrentLocation: "Rescue Team 1"},
		{VehicleType: model.VehicleTypeAmbulance, VehicleNumber: "AMB-003", DriverName: "Emily White", DriverContact: "9876543217", CurrentLocation: "South Zone"},
		{VehicleType: model.VehicleTypeFireTruck, VehicleNumber: "FIRE-003", DriverName: "Chris Lee", DriverContact: "9876543218", CurrentLocation: "Fire Station 3"},
		{VehicleType: model.VehicleTypePoliceCar, VehicleNumber: "POL-003", DriverName: "Anna Taylor", DriverContact: "9876543219", CurrentLocation: "Police Station C"},
	}
}

// SeedFleet inserts every vehicle whose number is not yet registered, as
// available. It returns the numbers it created.
func SeedFleet(ctx context.Context, db *gorm.DB, fleet []model.EmergencyVehicle) ([]string, error) {
	var created []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range fleet {
			vehicle := fleet[i]
			var count int64
			if err := tx.Model(&model.EmergencyVehicle{}).
				Where("vehicle_number = ?", vehicle.VehicleNumber).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			vehicle.IsAvailable = true
			if err := tx.Create(&vehicle).Error; err != nil {
				return err
			}
			created = append(created, vehicle.VehicleNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
