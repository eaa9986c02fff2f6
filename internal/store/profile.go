package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/oshawa-skills/apiserver/types"
)

// ProfileRepository handles persistence for profiles.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, email, name, phone_number, address, date_of_birth, is_certified, certified_skills, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (types.Profile, error) {
	var profile types.Profile
	var skillsJSON []byte
	err := row.Scan(
		&profile.UserID,
		&profile.Email,
		&profile.Name,
		&profile.PhoneNumber,
		&profile.Address,
		&profile.DateOfBirth,
		&profile.IsCertified,
		&skillsJSON,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return types.Profile{}, err
	}
	profile.CertifiedSkills = []string{}
	_ = json.Unmarshal(skillsJSON, &profile.CertifiedSkills)
	return profile, nil
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (types.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id = $1`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, err
	}
	return profile, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile types.Profile) (types.Profile, error) {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.CertifiedSkills == nil {
		profile.CertifiedSkills = []string{}
	}

	skillsJSON, err := json.Marshal(profile.CertifiedSkills)
	if err != nil {
		return types.Profile{}, err
	}

	const query = `
		INSERT INTO profiles (user_id, email, name, phone_number, address, date_of_birth, is_certified, certified_skills, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		profile.UserID,
		profile.Email,
		profile.Name,
		profile.PhoneNumber,
		profile.Address,
		profile.DateOfBirth,
		profile.IsCertified,
		skillsJSON,
		profile.CreatedAt,
		profile.UpdatedAt,
	); err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile types.Profile) (types.Profile, error) {
	profile.UpdatedAt = time.Now()
	if profile.CertifiedSkills == nil {
		profile.CertifiedSkills = []string{}
	}

	skillsJSON, err := json.Marshal(profile.CertifiedSkills)
	if err != nil {
		return types.Profile{}, err
	}

	const query = `
		UPDATE profiles
		SET phone_number = $1,
			address = $2,
			date_of_birth = $3,
			is_certified = $4,
			certified_skills = $5,
			updated_at = $6
		WHERE user_id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		profile.PhoneNumber,
		profile.Address,
		profile.DateOfBirth,
		profile.IsCertified,
		skillsJSON,
		profile.UpdatedAt,
		profile.UserID,
	)
	if err != nil {
		return types.Profile{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Profile{}, err
	}
	if affected == 0 {
		return types.Profile{}, ErrNotFound
	}
	return profile, nil
}
