// Package store defines the persistence contracts for gallery identities and
// celebrity profiles. PostgreSQL backs the identity embeddings, MySQL backs
// the editorial profile data.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound marks lookups for rows that do not exist. Implementations wrap
// it with the offending id.
var ErrNotFound = errors.New("not found")

// StoredIdentity is one gallery row from the identity database.
type StoredIdentity struct {
	ID        string
	Name      string
	Embedding []float32
	Dim       int
	CreatedAt time.Time
}

// Movie is one film credit on a profile.
type Movie struct {
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
	Role  string `json:"role,omitempty"`
}

// MusicCredit is one music release on a profile.
type MusicCredit struct {
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Profile holds the editorial data shown next to a recognized identity.
type Profile struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	DateOfBirth string        `json:"date_of_birth,omitempty"`
	Birthplace  string        `json:"birthplace,omitempty"`
	Professions []string      `json:"profession,omitempty"`
	Biography   string        `json:"biography,omitempty"`
	Movies      []Movie       `json:"movies,omitempty"`
	Music       []MusicCredit `json:"music,omitempty"`
	Awards      []string      `json:"awards,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
}

// IdentityReader provides read-only access to gallery identities.
type IdentityReader interface {
	// LoadAll returns every identity in insertion order (created_at, id) so
	// gallery scans stay reproducible across restarts.
	LoadAll(ctx context.Context) ([]StoredIdentity, error)
	// Count returns the total number of identities stored.
	Count(ctx context.Context) (int, error)
	// FindSimilar returns the nearest identities by Euclidean distance,
	// closest first, with their distances.
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]StoredIdentity, []float64, error)
}

// IdentityWriter provides write access to gallery identities.
type IdentityWriter interface {
	IdentityReader

	// Upsert inserts an identity or replaces its name and embedding.
	Upsert(ctx context.Context, identity StoredIdentity) error
	// Delete removes an identity.
	Delete(ctx context.Context, id string) error
}

// ProfileReader provides read-only access to celebrity profiles.
type ProfileReader interface {
	// List returns all profiles without their movie and music credits.
	List(ctx context.Context) ([]Profile, error)
	// Get retrieves a full profile, or ErrNotFound.
	Get(ctx context.Context, id string) (*Profile, error)
	// MissingBiography returns profiles without a biography, by name.
	MissingBiography(ctx context.Context) ([]Profile, error)
}

// ProfileWriter provides write access to celebrity profiles.
type ProfileWriter interface {
	ProfileReader

	// Create inserts a new profile.
	Create(ctx context.Context, p *Profile) error
	// Update replaces every editable field of a profile, or ErrNotFound.
	Update(ctx context.Context, p *Profile) error
	// Delete removes a profile, or ErrNotFound.
	Delete(ctx context.Context, id string) error
	// SetBiography stores a generated biography and optional professions.
	SetBiography(ctx context.Context, id, biography string, professions []string) error
}
