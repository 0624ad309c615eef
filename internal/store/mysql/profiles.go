package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/celebware/starspot/internal/store"
)

// ProfileRepository provides MySQL-backed celebrity profile storage. Slice
// fields live in JSON columns.
type ProfileRepository struct {
	pool *Pool
}

// NewProfileRepository creates a new MySQL profile repository.
func NewProfileRepository(pool *Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// List returns all profiles ordered by name, without their movie and music
// credits.
func (r *ProfileRepository) List(ctx context.Context) ([]store.Profile, error) {
	query := `
		SELECT id, name, date_of_birth, birthplace, professions, biography, awards, image_url
		FROM profiles
		ORDER BY name
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// Get retrieves a full profile, or ErrNotFound.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*store.Profile, error) {
	query := `
		SELECT id, name, date_of_birth, birthplace, professions, biography, movies, music, awards, image_url
		FROM profiles
		WHERE id = ?
	`

	var p store.Profile
	var professions, movies, music, awards []byte
	var biography sql.NullString

	err := r.pool.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.DateOfBirth, &p.Birthplace,
		&professions, &biography, &movies, &music, &awards, &p.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	p.Biography = biography.String
	for _, col := range []struct {
		data []byte
		dst  any
	}{
		{professions, &p.Professions},
		{movies, &p.Movies},
		{music, &p.Music},
		{awards, &p.Awards},
	} {
		if err := unmarshalColumn(col.data, col.dst); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", id, err)
		}
	}

	return &p, nil
}

// MissingBiography returns profiles without a biography, ordered by name.
func (r *ProfileRepository) MissingBiography(ctx context.Context) ([]store.Profile, error) {
	query := `
		SELECT id, name, date_of_birth, birthplace, professions, biography, awards, image_url
		FROM profiles
		WHERE biography IS NULL OR biography = ''
		ORDER BY name
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query profiles missing biography: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *store.Profile) error {
	professions, movies, music, awards, err := marshalCredits(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (id, name, date_of_birth, birthplace, professions, biography, movies, music, awards, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.pool.db.ExecContext(ctx, query,
		p.ID, p.Name, p.DateOfBirth, p.Birthplace,
		professions, p.Biography, movies, music, awards, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Update replaces every editable field of a profile.
func (r *ProfileRepository) Update(ctx context.Context, p *store.Profile) error {
	// Verify the profile exists first (MySQL RowsAffected returns 0 when
	// data is unchanged).
	if err := r.mustExist(ctx, p.ID); err != nil {
		return err
	}

	professions, movies, music, awards, err := marshalCredits(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE profiles
		SET name = ?, date_of_birth = ?, birthplace = ?, professions = ?,
		    biography = ?, movies = ?, music = ?, awards = ?, image_url = ?
		WHERE id = ?
	`
	_, err = r.pool.db.ExecContext(ctx, query,
		p.Name, p.DateOfBirth, p.Birthplace, professions,
		p.Biography, movies, music, awards, p.ImageURL, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// Delete removes a profile.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// SetBiography stores a generated biography, and professions when provided.
func (r *ProfileRepository) SetBiography(ctx context.Context, id, biography string, professions []string) error {
	if err := r.mustExist(ctx, id); err != nil {
		return err
	}

	if professions == nil {
		if _, err := r.pool.db.ExecContext(ctx, "UPDATE profiles SET biography = ? WHERE id = ?", biography, id); err != nil {
			return fmt.Errorf("update biography: %w", err)
		}
		return nil
	}

	data, err := marshalColumn(professions)
	if err != nil {
		return err
	}
	if _, err := r.pool.db.ExecContext(ctx, "UPDATE profiles SET biography = ?, professions = ? WHERE id = ?", biography, data, id); err != nil {
		return fmt.Errorf("update biography: %w", err)
	}
	return nil
}

func (r *ProfileRepository) mustExist(ctx context.Context, id string) error {
	var exists bool
	err := r.pool.db.QueryRowContext(ctx, "SELECT 1 FROM profiles WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check profile exists: %w", err)
	}
	return nil
}

func scanProfiles(rows *sql.Rows) ([]store.Profile, error) {
	var profiles []store.Profile

	for rows.Next() {
		var p store.Profile
		var professions, awards []byte
		var biography sql.NullString

		if err := rows.Scan(&p.ID, &p.Name, &p.DateOfBirth, &p.Birthplace, &professions, &biography, &awards, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}

		p.Biography = biography.String
		if err := unmarshalColumn(professions, &p.Professions); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", p.ID, err)
		}
		if err := unmarshalColumn(awards, &p.Awards); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", p.ID, err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

func marshalCredits(p *store.Profile) (professions, movies, music, awards []byte, err error) {
	if professions, err = marshalColumn(p.Professions); err != nil {
		return nil, nil, nil, nil, err
	}
	if movies, err = marshalColumn(p.Movies); err != nil {
		return nil, nil, nil, nil, err
	}
	if music, err = marshalColumn(p.Music); err != nil {
		return nil, nil, nil, nil, err
	}
	if awards, err = marshalColumn(p.Awards); err != nil {
		return nil, nil, nil, nil, err
	}
	return professions, movies, music, awards, nil
}

// marshalColumn encodes a slice for a JSON column, storing NULL when empty.
func marshalColumn[T any](items []T) ([]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal column: %w", err)
	}
	return data, nil
}

func unmarshalColumn(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// Verify interface compliance
var _ store.ProfileWriter = (*ProfileRepository)(nil)
