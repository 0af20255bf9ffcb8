// Package dbtest opens throwaway SQLite databases carrying the portal schema.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"service-portal/internal/db"
	"service-portal/internal/model"
)

// Open returns an in-memory database private to the test, migrated and
// with the default catalogs installed. A single connection keeps the shared
// cache consistent and serialises concurrent transactions.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db.Models()...))
	_, err = db.SeedCatalogs(context.Background(), database)
	require.NoError(t, err)

	return database
}

// CreateUser inserts a user with the given role and returns it.
func CreateUser(t *testing.T, database *gorm.DB, username string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.test",
		PasswordHash: "x",
		Role:         role,
		PhoneNumber:  "5550100",
		Address:      "1 Civic Plaza",
	}
	require.NoError(t, database.Create(user).Error)
	return user
}

// CreateVehicle inserts an available vehicle with the given number.
func CreateVehicle(t *testing.T, database *gorm.DB, number string, vehicleType model.VehicleType) *model.EmergencyVehicle {
	t.Helper()
	vehicle := &model.EmergencyVehicle{
		VehicleType:     vehicleType,
		VehicleNumber:   number,
		DriverName:      "Driver " + number,
		DriverContact:   "5550199",
		IsAvailable:     true,
		CurrentLocation: "Depot",
	}
	require.NoError(t, database.Create(vehicle).Error)
	return vehicle
}

func EmergencyType(t *testing.T, database *gorm.DB, name string) *model.EmergencyType {
	t.Helper()
	var et model.EmergencyType
	require.NoError(t, database.Where("name = ?", name).First(&et).Error)
	return &et
}

func UtilityType(t *testing.T, database *gorm.DB, name string) *model.UtilityType {
	t.Helper()
	var ut model.UtilityType
	require.NoError(t, database.Where("name = ?", name).First(&ut).Error)
	return &ut
}
