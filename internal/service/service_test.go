package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"service-portal/internal/auth"
	"service-portal/internal/db/dbtest"
	"service-portal/internal/model"
	"service-portal/internal/repository"
)

type fixture struct {
	db          *gorm.DB
	accounts    *AccountService
	emergencies *EmergencyService
	complaints  *ComplaintService
	vehicles    *VehicleService
	dashboards  *DashboardService
	reports     *ReportService

	citizen  model.Principal
	operator model.Principal
	driver   model.Principal
	officer  model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := dbtest.Open(t)

	userRepo := repository.NewUserRepository(database)
	catalogRepo := repository.NewCatalogRepository(database)
	emergencyRepo := repository.NewEmergencyRepository(database)
	complaintRepo := repository.NewComplaintRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)

	return &fixture{
		db: database,
		accounts: NewAccountService(userRepo, auth.NewIssuer("test-secret", time.Hour), map[model.UserRole]string{
			model.UserRoleEmergencyOperator: "3333",
		}),
		emergencies: NewEmergencyService(userRepo, catalogRepo, emergencyRepo, vehicleRepo, 50),
		complaints:  NewComplaintService(userRepo, catalogRepo, complaintRepo, 50),
		vehicles:    NewVehicleService(vehicleRepo, 50),
		dashboards:  NewDashboardService(emergencyRepo, complaintRepo, vehicleRepo),
		reports:     NewReportService(emergencyRepo, complaintRepo),

		citizen:  principalOf(dbtest.CreateUser(t, database, "alice", model.UserRoleCitizen)),
		operator: principalOf(dbtest.CreateUser(t, database, "emergency_op", model.UserRoleEmergencyOperator)),
		driver:   principalOf(dbtest.CreateUser(t, database, "driver1", model.UserRoleVehicleDriver)),
		officer:  principalOf(dbtest.CreateUser(t, database, "utility_officer", model.UserRoleUtilityOfficer)),
	}
}

func principalOf(u *model.User) model.Principal {
	return model.Principal{UserID: u.ID, Role: u.Role, Username: u.Username}
}

func (f *fixture) addUser(t *testing.T, username string, role model.UserRole) model.Principal {
	t.Helper()
	return principalOf(dbtest.CreateUser(t, f.db, username, role))
}

func (f *fixture) submitEmergency(t *testing.T, citizen model.Principal, typeName, address string) *model.EmergencyRecord {
	t.Helper()
	record, err := f.emergencies.Submit(context.Background(), citizen, SubmitEmergencyInput{
		EmergencyTypeID: dbtest.EmergencyType(t, f.db, typeName).ID,
		Priority:        model.PriorityHigh,
		Location:        model.Location{Address: address},
		Description:     "needs help",
	})
	require.NoError(t, err)
	return record
}

func (f *fixture) submitComplaint(t *testing.T, citizen model.Principal, typeName string) *model.ComplaintRecord {
	t.Helper()
	record, err := f.complaints.Submit(context.Background(), citizen, SubmitComplaintInput{
		UtilityTypeID: dbtest.UtilityType(t, f.db, typeName).ID,
		Title:         "Broken main",
		Description:   "water everywhere",
		Location:      model.Location{Address: "3 Oak Ave"},
	})
	require.NoError(t, err)
	return record
}

func (f *fixture) vehicle(t *testing.T, number string) *model.EmergencyVehicle {
	t.Helper()
	var v model.EmergencyVehicle
	require.NoError(t, f.db.Unscoped().First(&v, "vehicle_number = ?", number).Error)
	return &v
}

func ptr[T any](v T) *T {
	return &v
}
