package database

import "database/sql"

// EnsureSchema creates the application's tables when they do not exist
// yet.  Statements are idempotent so running them on every startup is
// safe.  The seat_ledger row keyed by schedule_id is the serialization
// point of all bookings; its version column backs the conditional
// update performed at booking commit time.
func EnsureSchema(db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			phone VARCHAR(20) NULL,
			password_hash VARCHAR(255) NOT NULL,
			is_admin TINYINT(1) NOT NULL DEFAULT 0,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			token_hash CHAR(64) NOT NULL,
			expires_at DATETIME NOT NULL,
			is_revoked TINYINT(1) NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_token_hash (token_hash),
			KEY idx_user (user_id),
			CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS trains (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			train_number VARCHAR(20) NOT NULL,
			train_name VARCHAR(255) NOT NULL,
			total_seats INT UNSIGNED NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_train_number (train_number)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS train_schedules (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			train_id BIGINT UNSIGNED NOT NULL,
			source VARCHAR(100) NOT NULL,
			destination VARCHAR(100) NOT NULL,
			departure_time TIME NOT NULL,
			arrival_time TIME NOT NULL,
			base_fare_paise BIGINT UNSIGNED NOT NULL,
			runs_on DATE NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_run (train_id, runs_on, departure_time),
			KEY idx_route (source, destination, runs_on),
			CONSTRAINT fk_schedule_train FOREIGN KEY (train_id) REFERENCES trains(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS seat_ledger (
			schedule_id BIGINT UNSIGNED PRIMARY KEY,
			booked_seats INT UNSIGNED NOT NULL DEFAULT 0,
			version BIGINT UNSIGNED NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_ledger_schedule FOREIGN KEY (schedule_id) REFERENCES train_schedules(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			pnr CHAR(10) NOT NULL,
			user_id BIGINT UNSIGNED NOT NULL,
			schedule_id BIGINT UNSIGNED NOT NULL,
			num_passengers INT UNSIGNED NOT NULL,
			total_fare_paise BIGINT UNSIGNED NOT NULL,
			status ENUM('PENDING','CONFIRMED','CANCELLED') NOT NULL DEFAULT 'PENDING',
			booked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			confirmed_at DATETIME NULL,
			cancelled_at DATETIME NULL,
			UNIQUE KEY uniq_pnr (pnr),
			KEY idx_user (user_id, booked_at),
			KEY idx_schedule (schedule_id),
			CONSTRAINT fk_booking_user FOREIGN KEY (user_id) REFERENCES users(id),
			CONSTRAINT fk_booking_schedule FOREIGN KEY (schedule_id) REFERENCES train_schedules(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS passengers (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			booking_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(255) NOT NULL,
			age TINYINT UNSIGNED NOT NULL,
			gender ENUM('M','F','O') NOT NULL,
			seat_number INT UNSIGNED NOT NULL,
			KEY idx_booking (booking_id),
			CONSTRAINT fk_passenger_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
