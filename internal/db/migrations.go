package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(150) NOT NULL,
		email VARCHAR(254),
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'citizen',
		phone_number VARCHAR(15),
		address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_users_role CHECK (role IN ('citizen', 'government_authority', 'utility_officer', 'emergency_operator', 'vehicle_driver'))
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (username);`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role);`,
	`CREATE TABLE IF NOT EXISTS emergency_types (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL,
		icon VARCHAR(50) NOT NULL DEFAULT 'exclamation-triangle'
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_emergency_types_name ON emergency_types (name);`,
	`CREATE TABLE IF NOT EXISTS utility_types (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL,
		department VARCHAR(100) NOT NULL,
		icon VARCHAR(50) NOT NULL DEFAULT 'wrench'
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_utility_types_name ON utility_types (name);`,
	`CREATE TABLE IF NOT EXISTS emergency_vehicles (
		id UUID PRIMARY KEY,
		vehicle_type VARCHAR(20) NOT NULL,
		vehicle_number VARCHAR(20) NOT NULL,
		driver_name VARCHAR(100) NOT NULL,
		driver_contact VARCHAR(15),
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		current_location VARCHAR(200),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ,
		CONSTRAINT chk_emergency_vehicles_type CHECK (vehicle_type IN ('ambulance', 'fire_truck', 'police_car', 'rescue_vehicle'))
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_vehicle_number_active
		ON emergency_vehicles (vehicle_number)
		WHERE deleted_at IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_emergency_vehicles_is_available ON emergency_vehicles (is_available);`,
	`CREATE INDEX IF NOT EXISTS idx_emergency_vehicles_deleted_at ON emergency_vehicles (deleted_at);`,
	`CREATE TABLE IF NOT EXISTS emergency_requests (
		id UUID PRIMARY KEY,
		citizen_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		emergency_type_id UUID NOT NULL REFERENCES emergency_types(id) ON DELETE RESTRICT,
		priority VARCHAR(20) NOT NULL DEFAULT 'medium',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		location_lat NUMERIC(9, 6),
		location_lng NUMERIC(9, 6),
		address TEXT NOT NULL,
		landmark VARCHAR(200),
		description TEXT NOT NULL,
		contact_number VARCHAR(15),
		additional_info TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		assigned_at TIMESTAMPTZ,
		resolved_at TIMESTAMPTZ,
		CONSTRAINT chk_emergency_requests_priority CHECK (priority IN ('critical', 'high', 'medium', 'low')),
		CONSTRAINT chk_emergency_requests_status CHECK (status IN ('pending', 'assigned', 'en_route', 'on_scene', 'resolved', 'cancelled'))
	);`,
	`CREATE INDEX IF NOT EXISTS idx_emergency_requests_citizen_id ON emergency_requests (citizen_id);`,
	`CREATE INDEX IF NOT EXISTS idx_emergency_requests_status ON emergency_requests (status);`,
	`CREATE INDEX IF NOT EXISTS idx_emergency_requests_created_at ON emergency_requests (created_at);`,
	`CREATE TABLE IF NOT EXISTS dispatch_records (
		id UUID PRIMARY KEY,
		emergency_id UUID NOT NULL REFERENCES emergency_requests(id) ON DELETE CASCADE,
		vehicle_id UUID NOT NULL REFERENCES emergency_vehicles(id) ON DELETE RESTRICT,
		assigned_by_id UUID REFERENCES users(id) ON DELETE SET NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'assigned',
		notes TEXT,
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ,
		CONSTRAINT chk_dispatch_records_status CHECK (status IN ('assigned', 'en_route', 'on_scene', 'completed', 'cancelled'))
	);`,
	`CREATE INDEX IF NOT EXISTS idx_dispatch_records_emergency_id ON dispatch_records (emergency_id);`,
	`CREATE INDEX IF NOT EXISTS idx_dispatch_records_vehicle_id ON dispatch_records (vehicle_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_dispatch_active_vehicle
		ON dispatch_records (vehicle_id)
		WHERE status IN ('assigned', 'en_route', 'on_scene');`,
	`CREATE TABLE IF NOT EXISTS complaint_sequences (
		prefix VARCHAR(8) PRIMARY KEY,
		last_value BIGINT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS complaints (
		id UUID PRIMARY KEY,
		complaint_code VARCHAR(20) NOT NULL,
		citizen_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		utility_type_id UUID NOT NULL REFERENCES utility_types(id) ON DELETE RESTRICT,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		priority VARCHAR(20) NOT NULL DEFAULT 'medium',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		location_lat NUMERIC(9, 6),
		location_lng NUMERIC(9, 6),
		address TEXT NOT NULL,
		landmark VARCHAR(200),
		assigned_officer_id UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		assigned_at TIMESTAMPTZ,
		resolved_at TIMESTAMPTZ,
		escalated_at TIMESTAMPTZ,
		resolution_notes TEXT,
		satisfaction_rating SMALLINT,
		CONSTRAINT chk_complaints_priority CHECK (priority IN ('high', 'medium', 'low')),
		CONSTRAINT chk_complaints_status CHECK (status IN ('pending', 'assigned', 'in_progress', 'resolved', 'escalated', 'rejected')),
		CONSTRAINT chk_complaints_rating CHECK (satisfaction_rating IS NULL OR satisfaction_rating BETWEEN 1 AND 5)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_complaints_complaint_code ON complaints (complaint_code);`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_citizen_id ON complaints (citizen_id);`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints (status);`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_assigned_officer_id ON complaints (assigned_officer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_created_at ON complaints (created_at);`,
	`CREATE TABLE IF NOT EXISTS complaint_updates (
		id UUID PRIMARY KEY,
		complaint_id UUID NOT NULL REFERENCES complaints(id) ON DELETE CASCADE,
		updated_by_id UUID REFERENCES users(id) ON DELETE SET NULL,
		update_text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_complaint_updates_complaint_id ON complaint_updates (complaint_id);`,
	`CREATE TABLE IF NOT EXISTS request_status_log (
		id UUID PRIMARY KEY,
		request_kind VARCHAR(16) NOT NULL,
		request_id UUID NOT NULL,
		old_status VARCHAR(20),
		new_status VARCHAR(20) NOT NULL,
		note TEXT,
		changed_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_request_status_log_request ON request_status_log (request_kind, request_id);`,
	`CREATE OR REPLACE FUNCTION set_row_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_emergency_requests_updated_at') THEN
			CREATE TRIGGER trg_emergency_requests_updated_at
				BEFORE UPDATE ON emergency_requests
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_complaints_updated_at') THEN
			CREATE TRIGGER trg_complaints_updated_at
				BEFORE UPDATE ON complaints
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_emergency_vehicles_updated_at') THEN
			CREATE TRIGGER trg_emergency_vehicles_updated_at
				BEFORE UPDATE ON emergency_vehicles
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
