package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-portal/internal/db"
	"service-portal/internal/db/dbtest"
	"service-portal/internal/model"
)

func TestSeedCatalogsIsIdempotent(t *testing.T) {
	database := dbtest.Open(t)

	var count int64
	require.NoError(t, database.Model(&model.EmergencyType{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
	require.NoError(t, database.Model(&model.UtilityType{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	inserted, err := db.SeedCatalogs(context.Background(), database)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	require.NoError(t, database.Model(&model.EmergencyType{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	fire := dbtest.EmergencyType(t, database, "Fire")
	assert.Equal(t, "fire", fire.Icon)
	water := dbtest.UtilityType(t, database, "Water Supply")
	assert.Equal(t, "Water Department", water.Department)
}

func TestSeedCatalogsKeepsCustomEntries(t *testing.T) {
	database := dbtest.Open(t)
	require.NoError(t, database.Where("1 = 1").Delete(&model.UtilityType{}).Error)
	require.NoError(t, database.Create(&model.UtilityType{Name: "Sewage", Description: "d", Department: "Water", Icon: "wrench"}).Error)

	inserted, err := db.SeedCatalogs(context.Background(), database)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	var count int64
	require.NoError(t, database.Model(&model.UtilityType{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeedFleetSkipsRegisteredNumbers(t *testing.T) {
	database := dbtest.Open(t)
	dbtest.CreateVehicle(t, database, "FIRE-001", model.VehicleTypeFireTruck)

	created, err := db.SeedFleet(context.Background(), database, db.SampleFleet())
	require.NoError(t, err)
	assert.Len(t, created, 9)
	assert.NotContains(t, created, "FIRE-001")

	again, err := db.SeedFleet(context.Background(), database, db.SampleFleet())
	require.NoError(t, err)
	assert.Empty(t, again)

	var available int64
	require.NoError(t, database.Model(&model.EmergencyVehicle{}).Where("is_available = ?", true).Count(&available).Error)
	assert.Equal(t, int64(10), available)
}
