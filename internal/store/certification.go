package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/oshawa-skills/apiserver/types"
)

// CertificationRepository handles persistence for certifications and the
// profile mutations that must stay consistent with them. Review-state
// transitions run inside a single transaction with a conditional guard
// on the current status.
type CertificationRepository struct {
	db *sql.DB
}

func NewCertificationRepository(db *sql.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

const certificationColumns = `id, user_id, user_email, user_name, skill_category, certificate_type,
	certificate_title, issuing_organization, issue_date, document_key, file_size,
	status, reviewed_by, reviewed_at, rejection_reason, uploaded_at, created_at`

func scanCertification(row interface{ Scan(...any) error }) (types.Certification, error) {
	var cert types.Certification
	var reviewedAt sql.NullTime
	err := row.Scan(
		&cert.ID,
		&cert.UserID,
		&cert.UserEmail,
		&cert.UserName,
		&cert.SkillCategory,
		&cert.CertificateType,
		&cert.CertificateTitle,
		&cert.IssuingOrganization,
		&cert.IssueDate,
		&cert.DocumentKey,
		&cert.FileSize,
		&cert.Status,
		&cert.ReviewedBy,
		&reviewedAt,
		&cert.RejectionReason,
		&cert.UploadedAt,
		&cert.CreatedAt,
	)
	if err != nil {
		return types.Certification{}, err
	}
	if reviewedAt.Valid {
		cert.ReviewedAt = &reviewedAt.Time
	}
	return cert, nil
}

func (r *CertificationRepository) Create(ctx context.Context, cert types.Certification) (types.Certification, error) {
	now := time.Now()
	cert.CreatedAt = now
	if cert.UploadedAt.IsZero() {
		cert.UploadedAt = now
	}
	if cert.Status == "" {
		cert.Status = types.StatusPending
	}

	const query = `
		INSERT INTO certifications (id, user_id, user_email, user_name, skill_category, certificate_type,
			certificate_title, issuing_organization, issue_date, document_key, file_size,
			status, uploaded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		cert.ID,
		cert.UserID,
		cert.UserEmail,
		cert.UserName,
		cert.SkillCategory,
		cert.CertificateType,
		cert.CertificateTitle,
		cert.IssuingOrganization,
		cert.IssueDate,
		cert.DocumentKey,
		cert.FileSize,
		cert.Status,
		cert.UploadedAt,
		cert.CreatedAt,
	); err != nil {
		return types.Certification{}, err
	}
	return cert, nil
}

func (r *CertificationRepository) Get(ctx context.Context, id string) (types.Certification, error) {
	const query = `
		SELECT ` + certificationColumns + `
		FROM certifications
		WHERE id = $1`
	cert, err := scanCertification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Certification{}, ErrNotFound
		}
		return types.Certification{}, err
	}
	return cert, nil
}

// ListByUser returns all of one user's certifications, newest first.
func (r *CertificationRepository) ListByUser(ctx context.Context, userID string) ([]types.Certification, error) {
	const query = `
		SELECT ` + certificationColumns + `
		FROM certifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

// ListByStatus returns all certifications in the given review state,
// newest first.
func (r *CertificationRepository) ListByStatus(ctx context.Context, status types.CertificationStatus) ([]types.Certification, error) {
	const query = `
		SELECT ` + certificationColumns + `
		FROM certifications
		WHERE status = $1
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, string(status))
}

func (r *CertificationRepository) list(ctx context.Context, query string, arg any) ([]types.Certification, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []types.Certification
	for rows.Next() {
		cert, err := scanCertification(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return certs, nil
}

// Approve transitions the record pending -> approved and folds the
// certificate's category into the owner's profile, all in one
// transaction. The UPDATE is conditional on the current status, so a
// record that was already decided yields ErrNotPending rather than a
// second transition.
func (r *CertificationRepository) Approve(ctx context.Context, id, reviewerEmail string) (types.Certification, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Certification{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const approveQuery = `
		UPDATE certifications
		SET status = $1,
			reviewed_by = $2,
			reviewed_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + certificationColumns
	cert, err := scanCertification(tx.QueryRowContext(
		ctx,
		approveQuery,
		types.StatusApproved,
		reviewerEmail,
		time.Now(),
		id,
		types.StatusPending,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Certification{}, r.classifyMissedTransition(ctx, tx, id)
		}
		return types.Certification{}, err
	}

	if err := r.addCertifiedSkill(ctx, tx, cert.UserID, cert.SkillCategory); err != nil {
		return types.Certification{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Certification{}, err
	}
	return cert, nil
}

// DeletePending removes the record only while it is still pending.
// Used by rejection and by owner-initiated deletes.
func (r *CertificationRepository) DeletePending(ctx context.Context, id string) error {
	const query = `DELETE FROM certifications WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, types.StatusPending)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.classifyMissedTransition(ctx, r.db, id)
	}
	return nil
}

// DeleteAndRecompute removes the record regardless of status and
// recomputes the owner's certified-skill set from whatever approved
// certifications remain, in one transaction. Used by admin deletion.
func (r *CertificationRepository) DeleteAndRecompute(ctx context.Context, id, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const deleteQuery = `DELETE FROM certifications WHERE id = $1`
	result, err := tx.ExecContext(ctx, deleteQuery, id)
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

	const remainingQuery = `
		SELECT DISTINCT skill_category
		FROM certifications
		WHERE user_id = $1 AND status = $2
		ORDER BY skill_category`
	rows, err := tx.QueryContext(ctx, remainingQuery, userID, types.StatusApproved)
	if err != nil {
		return err
	}
	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			rows.Close()
			return err
		}
		categories = append(categories, category)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	skillsJSON, err := json.Marshal(categories)
	if err != nil {
		return err
	}

	const profileQuery = `
		UPDATE profiles
		SET is_certified = $1,
			certified_skills = $2,
			updated_at = $3
		WHERE user_id = $4`
	if _, err := tx.ExecContext(ctx, profileQuery, len(categories) > 0, skillsJSON, time.Now(), userID); err != nil {
		return err
	}

	return tx.Commit()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// classifyMissedTransition distinguishes "record gone" from "record
// already decided" after a conditional write matched zero rows.
func (r *CertificationRepository) classifyMissedTransition(ctx context.Context, q querier, id string) error {
	const query = `SELECT 1 FROM certifications WHERE id = $1`
	var one int
	err := q.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrNotPending
}

// addCertifiedSkill marks the profile certified and appends the category
// to its certified set if not already present. Missing profiles are
// skipped; the profile is created lazily on first read, and approval of
// a user who never opened their profile must not fail.
func (r *CertificationRepository) addCertifiedSkill(ctx context.Context, tx *sql.Tx, userID, category string) error {
	const selectQuery = `
		SELECT certified_skills
		FROM profiles
		WHERE user_id = $1
		FOR UPDATE`
	var skillsJSON []byte
	err := tx.QueryRowContext(ctx, selectQuery, userID).Scan(&skillsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	skills := []string{}
	_ = json.Unmarshal(skillsJSON, &skills)
	found := false
	for _, s := range skills {
		if s == category {
			found = true
			break
		}
	}
	if !found {
		skills = append(skills, category)
	}

	updated, err := json.Marshal(skills)
	if err != nil {
		return err
	}

	const updateQuery = `
		UPDATE profiles
		SET is_certified = TRUE,
			certified_skills = $1,
			updated_at = $2
		WHERE user_id = $3`
	_, err = tx.ExecContext(ctx, updateQuery, updated, time.Now(), userID)
	return err
}
