package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/jab/internal/trial"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Profile is a named tuning profile for the trial engine. Different
// subjects, cameras, and lighting want different smoothing and thresholds;
// profiles make those switchable without editing code.
type Profile struct {
	ID              string
	Name            string
	Alpha           float64
	MinDisplacement float64
	NoiseSamples    int
	StartFactor     float64
	MinStartVel     float64
	ConsecFrames    int
	MovingWindowMs  int64
	ResultHoldMs    int64
	WaitMinMs       int64
	WaitMaxMs       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TrialConfig converts the profile into the engine's Config.
func (p *Profile) TrialConfig() trial.Config {
	return trial.Config{
		Alpha:           p.Alpha,
		MinDisplacement: p.MinDisplacement,
		NoiseSamples:    p.NoiseSamples,
		StartFactor:     p.StartFactor,
		MinStartVel:     p.MinStartVel,
		ConsecFrames:    p.ConsecFrames,
		MovingWindow:    time.Duration(p.MovingWindowMs) * time.Millisecond,
		ResultHold:      time.Duration(p.ResultHoldMs) * time.Millisecond,
		WaitMin:         time.Duration(p.WaitMinMs) * time.Millisecond,
		WaitMax:         time.Duration(p.WaitMaxMs) * time.Millisecond,
	}
}

// DefaultProfile returns a Profile mirroring trial.DefaultConfig.
func DefaultProfile(id, name string) *Profile {
	cfg := trial.DefaultConfig()
	return &Profile{
		ID:              id,
		Name:            name,
		Alpha:           cfg.Alpha,
		MinDisplacement: cfg.MinDisplacement,
		NoiseSamples:    cfg.NoiseSamples,
		StartFactor:     cfg.StartFactor,
		MinStartVel:     cfg.MinStartVel,
		ConsecFrames:    cfg.ConsecFrames,
		MovingWindowMs:  cfg.MovingWindow.Milliseconds(),
		ResultHoldMs:    cfg.ResultHold.Milliseconds(),
		WaitMinMs:       cfg.WaitMin.Milliseconds(),
		WaitMaxMs:       cfg.WaitMax.Milliseconds(),
	}
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, alpha, min_displacement, noise_samples,
	start_factor, min_start_vel, consec_frames, moving_window_ms,
	result_hold_ms, wait_min_ms, wait_max_ms, created_at, updated_at`

func scanProfile(scan func(dest ...any) error) (*Profile, error) {
	p := &Profile{}
	err := scan(
		&p.ID, &p.Name, &p.Alpha, &p.MinDisplacement, &p.NoiseSamples,
		&p.StartFactor, &p.MinStartVel, &p.ConsecFrames, &p.MovingWindowMs,
		&p.ResultHoldMs, &p.WaitMinMs, &p.WaitMaxMs, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new profile into the database.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Alpha, p.MinDisplacement, p.NoiseSamples,
		p.StartFactor, p.MinStartVel, p.ConsecFrames, p.MovingWindowMs,
		p.ResultHoldMs, p.WaitMinMs, p.WaitMaxMs, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	row := r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)

	p, err := scanProfile(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByName retrieves a profile by its name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	row := r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name)

	p, err := scanProfile(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List retrieves all profiles ordered by creation time, newest first.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update updates an existing profile in the database.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, alpha = ?, min_displacement = ?,
			noise_samples = ?, start_factor = ?, min_start_vel = ?,
			consec_frames = ?, moving_window_ms = ?, result_hold_ms = ?,
			wait_min_ms = ?, wait_max_ms = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Alpha, p.MinDisplacement, p.NoiseSamples, p.StartFactor,
		p.MinStartVel, p.ConsecFrames, p.MovingWindowMs, p.ResultHoldMs,
		p.WaitMinMs, p.WaitMaxMs, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a profile from the database by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
