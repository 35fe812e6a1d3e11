package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - per-subject tuning for the trial engine.
		// Durations are stored in milliseconds.
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			alpha REAL NOT NULL DEFAULT 0.35,
			min_displacement REAL NOT NULL DEFAULT 0.003,
			noise_samples INTEGER NOT NULL DEFAULT 30,
			start_factor REAL NOT NULL DEFAULT 3.0,
			min_start_vel REAL NOT NULL DEFAULT 0.03,
			consec_frames INTEGER NOT NULL DEFAULT 2,
			moving_window_ms INTEGER NOT NULL DEFAULT 1000,
			result_hold_ms INTEGER NOT NULL DEFAULT 3000,
			wait_min_ms INTEGER NOT NULL DEFAULT 2000,
			wait_max_ms INTEGER NOT NULL DEFAULT 4000,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs.
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
