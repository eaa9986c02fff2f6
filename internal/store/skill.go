package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oshawa-skills/apiserver/types"
)

// SkillRepository handles persistence for skill listings.
//
// The certified flag on a listing is never stored: every read joins the
// owner's profile by email, so approvals take effect everywhere without
// a bulk rewrite of skill rows.
type SkillRepository struct {
	db *sql.DB
}

func NewSkillRepository(db *sql.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

const skillSelect = `
	SELECT s.id, s.title, s.description, s.user_name, s.user_email, s.category, s.location,
		s.is_available, COALESCE(p.is_certified, FALSE), s.created_at, s.updated_at
	FROM skills s
	LEFT JOIN profiles p ON LOWER(p.email) = LOWER(s.user_email)`

func scanSkill(row interface{ Scan(...any) error }) (types.Skill, error) {
	var skill types.Skill
	err := row.Scan(
		&skill.ID,
		&skill.Title,
		&skill.Description,
		&skill.UserName,
		&skill.UserEmail,
		&skill.Category,
		&skill.Location,
		&skill.IsAvailable,
		&skill.IsCertified,
		&skill.CreatedAt,
		&skill.UpdatedAt,
	)
	if err != nil {
		return types.Skill{}, err
	}
	return skill, nil
}

// List returns available listings newest first, optionally filtered by
// category, resuming strictly after the keyset cursor when one is given.
// The returned total counts every matching row regardless of the page.
func (r *SkillRepository) List(ctx context.Context, category string, limit int, after *Cursor) ([]types.Skill, int, error) {
	if limit < 1 {
		limit = 50
	}

	conditions := []string{"s.is_available"}
	args := []any{}

	if category != "" && !strings.EqualFold(category, "all") {
		args = append(args, category)
		conditions = append(conditions, fmt.Sprintf("s.category = $%d", len(args)))
	}

	countQuery := `SELECT COUNT(1) FROM skills s WHERE ` + strings.Join(conditions, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if after != nil {
		args = append(args, after.CreatedAt, after.ID)
		conditions = append(conditions, fmt.Sprintf("(s.created_at, s.id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, limit)
	query := skillSelect +
		` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY s.created_at DESC, s.id DESC` +
		fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	skills := make([]types.Skill, 0, limit)
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, 0, err
		}
		skills = append(skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return skills, total, nil
}

// Search returns available listings matching every provided filter.
// The free-text query is a case-insensitive substring match against
// title, description and poster name.
func (r *SkillRepository) Search(ctx context.Context, filter types.SkillFilter) ([]types.Skill, error) {
	conditions := []string{"s.is_available"}
	args := []any{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(s.title ILIKE $%d OR s.description ILIKE $%d OR s.user_name ILIKE $%d)", n, n, n))
	}
	if c := strings.TrimSpace(filter.Category); c != "" && !strings.EqualFold(c, "all") {
		args = append(args, c)
		conditions = append(conditions, fmt.Sprintf("s.category = $%d", len(args)))
	}
	if l := strings.TrimSpace(filter.Location); l != "" {
		args = append(args, "%"+l+"%")
		conditions = append(conditions, fmt.Sprintf("s.location ILIKE $%d", len(args)))
	}

	query := skillSelect +
		` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []types.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *SkillRepository) Get(ctx context.Context, id string) (types.Skill, error) {
	query := skillSelect + ` WHERE s.id = $1`
	skill, err := scanSkill(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Skill{}, ErrNotFound
		}
		return types.Skill{}, err
	}
	return skill, nil
}

func (r *SkillRepository) Create(ctx context.Context, skill types.Skill) (types.Skill, error) {
	now := time.Now()
	skill.CreatedAt = now
	skill.UpdatedAt = now

	const query = `
		INSERT INTO skills (id, title, description, user_name, user_email, category, location, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		skill.ID,
		skill.Title,
		skill.Description,
		skill.UserName,
		skill.UserEmail,
		skill.Category,
		skill.Location,
		skill.IsAvailable,
		skill.CreatedAt,
		skill.UpdatedAt,
	); err != nil {
		return types.Skill{}, err
	}
	return skill, nil
}

func (r *SkillRepository) Update(ctx context.Context, skill types.Skill) (types.Skill, error) {
	skill.UpdatedAt = time.Now()

	const query = `
		UPDATE skills
		SET title = $1,
			description = $2,
			category = $3,
			location = $4,
			is_available = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		skill.Title,
		skill.Description,
		skill.Category,
		skill.Location,
		skill.IsAvailable,
		skill.UpdatedAt,
		skill.ID,
	)
	if err != nil {
		return types.Skill{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Skill{}, err
	}
	if affected == 0 {
		return types.Skill{}, ErrNotFound
	}
	return skill, nil
}

func (r *SkillRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM skills WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
