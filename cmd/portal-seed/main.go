// Command portal-seed installs demo staff accounts and the sample vehicle
// fleet. Existing usernames and vehicle numbers are skipped.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"service-portal/internal/config"
	"service-portal/internal/db"
	"service-portal/internal/logger"
	"service-portal/internal/model"
	"service-portal/internal/repository"
	"service-portal/internal/service"
)

var staff = []service.StaffInput{
	{Username: "gov_officer", Password: "gov123", Role: model.UserRoleGovernmentAuthority, Email: "gov@smartcity.com"},
	{Username: "utility_officer", Password: "utility123", Role: model.UserRoleUtilityOfficer, Email: "utility@smartcity.com"},
	{Username: "emergency_op", Password: "emergency123", Role: model.UserRoleEmergencyOperator, Email: "emergency@smartcity.com"},
	{Username: "driver1", Password: "driver123", Role: model.UserRoleVehicleDriver, Email: "driver@smartcity.com"},
}

func main() {
	envFile := pflag.String("env-file", "", "extra env file loaded before the environment")
	withUsers := pflag.Bool("users", true, "create staff test accounts")
	withVehicles := pflag.Bool("vehicles", true, "create the sample vehicle fleet")
	pflag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "env file: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)
	ctx := context.Background()

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if *withUsers {
		accounts := service.NewAccountService(repository.NewUserRepository(database), nil, cfg.Auth.AccessCodes)
		for _, input := range staff {
			created, err := accounts.EnsureStaff(ctx, input)
			if err != nil {
				log.Fatal().Err(err).Str("username", input.Username).Msg("failed to create staff account")
			}
			if created {
				log.Info().Str("username", input.Username).Str("role", string(input.Role)).Msg("staff account created")
			} else {
				log.Warn().Str("username", input.Username).Msg("staff account already exists")
			}
		}
	}

	if *withVehicles {
		created, err := db.SeedFleet(ctx, database, db.SampleFleet())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create sample vehicles")
		}
		log.Info().Strs("vehicles", created).Int("count", len(created)).Msg("sample fleet installed")
	}
}
