package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Idempotent bootstrap schema. Statements run in order inside one
// transaction at startup.
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'actor_role') THEN
			CREATE TYPE actor_role AS ENUM ('admin', 'dispatcher', 'driver', 'viewer');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_status') THEN
			CREATE TYPE vehicle_status AS ENUM ('active', 'inactive', 'maintenance', 'repair', 'retired', 'sold');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_availability') THEN
			CREATE TYPE vehicle_availability AS ENUM ('available', 'in-use', 'maintenance', 'out-of-service');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'driver_status') THEN
			CREATE TYPE driver_status AS ENUM ('active', 'inactive', 'suspended', 'terminated', 'on-leave');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'driver_availability') THEN
			CREATE TYPE driver_availability AS ENUM ('available', 'on-duty', 'off-duty', 'on-break', 'unavailable');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'trip_status') THEN
			CREATE TYPE trip_status AS ENUM ('planned', 'assigned', 'in-progress', 'completed', 'cancelled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'maintenance_status') THEN
			CREATE TYPE maintenance_status AS ENUM ('scheduled', 'in-progress', 'completed', 'cancelled', 'postponed');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'maintenance_type') THEN
			CREATE TYPE maintenance_type AS ENUM ('preventive', 'repair', 'inspection');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'alert_status') THEN
			CREATE TYPE alert_status AS ENUM ('active', 'acknowledged', 'resolved', 'dismissed', 'expired');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'alert_type') THEN
			CREATE TYPE alert_type AS ENUM ('maintenance-due', 'license-expiry', 'trip-delay', 'security', 'system');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'alert_severity') THEN
			CREATE TYPE alert_severity AS ENUM ('low', 'medium', 'high', 'critical');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		emergency_contact VARCHAR(255),
		license_number VARCHAR(64) NOT NULL,
		license_expiry TIMESTAMPTZ,
		status driver_status NOT NULL DEFAULT 'active',
		availability driver_availability NOT NULL DEFAULT 'available',
		salary BIGINT NOT NULL DEFAULT 0,
		claim_kind VARCHAR(16) NOT NULL DEFAULT 'none',
		claim_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate_number VARCHAR(32) NOT NULL UNIQUE,
		vin VARCHAR(64),
		brand VARCHAR(64),
		model VARCHAR(64),
		year INT,
		status vehicle_status NOT NULL DEFAULT 'active',
		availability vehicle_availability NOT NULL DEFAULT 'available',
		assigned_driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		odometer_km BIGINT NOT NULL DEFAULT 0,
		claim_kind VARCHAR(16) NOT NULL DEFAULT 'none',
		claim_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS actors (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL UNIQUE,
		full_name VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		password_hash VARCHAR(255) NOT NULL,
		role actor_role NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		failed_attempts INT NOT NULL DEFAULT 0,
		lock_until TIMESTAMPTZ,
		reset_token_hash VARCHAR(64),
		reset_token_expiry TIMESTAMPTZ,
		driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE RESTRICT,
		driver_id UUID NOT NULL REFERENCES drivers(id) ON DELETE RESTRICT,
		status trip_status NOT NULL DEFAULT 'planned',
		origin_address TEXT,
		destination_address TEXT,
		cargo_description TEXT,
		scheduled_start TIMESTAMPTZ,
		scheduled_end TIMESTAMPTZ,
		actual_start TIMESTAMPTZ,
		actual_end TIMESTAMPTZ,
		odometer_start BIGINT,
		odometer_end BIGINT,
		fuel_start DOUBLE PRECISION,
		fuel_end DOUBLE PRECISION,
		delayed BOOLEAN NOT NULL DEFAULT FALSE,
		delay_reason TEXT,
		notes TEXT,
		created_by UUID NOT NULL REFERENCES actors(id) ON DELETE RESTRICT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_vehicle_id ON trips (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_driver_id ON trips (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_status ON trips (status);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_vehicle_active_trip
		ON trips (vehicle_id)
		WHERE status = 'in-progress';`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_driver_active_trip
		ON trips (driver_id)
		WHERE status = 'in-progress';`,
	`CREATE TABLE IF NOT EXISTS maintenance_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE RESTRICT,
		type maintenance_type NOT NULL,
		status maintenance_status NOT NULL DEFAULT 'scheduled',
		description TEXT,
		scheduled_date TIMESTAMPTZ NOT NULL,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		vehicle_condition_before TEXT,
		vehicle_condition_after TEXT,
		work_performed TEXT,
		findings TEXT,
		inspection_passed BOOLEAN,
		cost_cents BIGINT NOT NULL DEFAULT 0,
		created_by UUID NOT NULL REFERENCES actors(id) ON DELETE RESTRICT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_vehicle_id ON maintenance_records (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_status ON maintenance_records (status);`,
	`CREATE TABLE IF NOT EXISTS maintenance_approvals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		maintenance_id UUID NOT NULL REFERENCES maintenance_records(id) ON DELETE CASCADE,
		approved_by UUID NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
		comments TEXT,
		status_at_approval maintenance_status NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_approvals_maintenance_id ON maintenance_approvals (maintenance_id);`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		type alert_type NOT NULL,
		severity alert_severity NOT NULL,
		status alert_status NOT NULL DEFAULT 'active',
		title VARCHAR(255) NOT NULL,
		message TEXT,
		vehicle_id UUID REFERENCES vehicles(id) ON DELETE CASCADE,
		driver_id UUID REFERENCES drivers(id) ON DELETE CASCADE,
		trip_id UUID REFERENCES trips(id) ON DELETE CASCADE,
		actor_id UUID REFERENCES actors(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ,
		acknowledged_by UUID REFERENCES actors(id) ON DELETE SET NULL,
		acknowledged_at TIMESTAMPTZ,
		ack_note TEXT,
		resolved_by UUID REFERENCES actors(id) ON DELETE SET NULL,
		resolved_at TIMESTAMPTZ,
		resolution_note TEXT,
		resolution_action VARCHAR(64),
		dismissed_by UUID REFERENCES actors(id) ON DELETE SET NULL,
		dismissed_at TIMESTAMPTZ,
		created_by UUID REFERENCES actors(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts (status);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_expires_at ON alerts (expires_at);`,
	`CREATE TABLE IF NOT EXISTS status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		entity_kind VARCHAR(16) NOT NULL,
		entity_id UUID NOT NULL,
		old_status VARCHAR(32),
		new_status VARCHAR(32) NOT NULL,
		note TEXT,
		changed_by UUID REFERENCES actors(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_status_log_entity ON status_log (entity_kind, entity_id);`,
	`CREATE OR REPLACE FUNCTION set_row_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_actors_updated_at') THEN
			CREATE TRIGGER trg_actors_updated_at
				BEFORE UPDATE ON actors
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_vehicles_updated_at') THEN
			CREATE TRIGGER trg_vehicles_updated_at
				BEFORE UPDATE ON vehicles
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_drivers_updated_at') THEN
			CREATE TRIGGER trg_drivers_updated_at
				BEFORE UPDATE ON drivers
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_trips_updated_at') THEN
			CREATE TRIGGER trg_trips_updated_at
				BEFORE UPDATE ON trips
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_maintenance_updated_at') THEN
			CREATE TRIGGER trg_maintenance_updated_at
				BEFORE UPDATE ON maintenance_records
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_alerts_updated_at') THEN
			CREATE TRIGGER trg_alerts_updated_at
				BEFORE UPDATE ON alerts
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, stmt := range migrationStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("migration statement %d: %w", i, err)
			}
		}
		return nil
	})
}
