package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oshawa-skills/apiserver/internal/store"
	"github.com/oshawa-skills/apiserver/types"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// SkillRepository defines persistence operations for skill listings.
type SkillRepository interface {
	List(ctx context.Context, category string, limit int, after *store.Cursor) ([]types.Skill, int, error)
	Search(ctx context.Context, filter types.SkillFilter) ([]types.Skill, error)
	Get(ctx context.Context, id string) (types.Skill, error)
	Create(ctx context.Context, skill types.Skill) (types.Skill, error)
	Update(ctx context.Context, skill types.Skill) (types.Skill, error)
	Delete(ctx context.Context, id string) error
}

// CreateSkillInput is the payload for posting a new listing.
type CreateSkillInput struct {
	Title       string `json:"title" validate:"required,min=5"`
	Description string `json:"description" validate:"required,min=20"`
	UserName    string `json:"userName" validate:"required"`
	UserEmail   string `json:"userEmail" validate:"required,email"`
	Category    string `json:"category" validate:"required"`
	Location    string `json:"location" validate:"required"`
}

// UpdateSkillInput is the editable subset of a listing. Nil fields are
// left untouched; identifiers and timestamps can never be updated.
type UpdateSkillInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Location    *string `json:"location,omitempty"`
	IsAvailable *bool   `json:"isAvailable,omitempty"`
}

// SkillService encapsulates skill-listing use-cases.
type SkillService struct {
	repo     SkillRepository
	validate *validator.Validate
}

func NewSkillService(repo SkillRepository) *SkillService {
	return &SkillService{
		repo:     repo,
		validate: validator.New(),
	}
}

// List returns one page of available listings, newest first. The cursor
// token is the serialized keyset position from a previous page.
func (s *SkillService) List(ctx context.Context, category string, limit int, cursorToken string) (types.SkillPage, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	after, err := store.DecodeCursor(cursorToken)
	if err != nil {
		return types.SkillPage{}, validationErrorf("invalid cursor")
	}

	skills, total, err := s.repo.List(ctx, category, limit, after)
	if err != nil {
		return types.SkillPage{}, err
	}

	page := types.SkillPage{Skills: skills, Total: total}
	if len(skills) == limit {
		last := skills[len(skills)-1]
		page.NextCursor = store.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return page, nil
}

// Search returns available listings matching every provided filter,
// requiring at least one of them.
func (s *SkillService) Search(ctx context.Context, filter types.SkillFilter) ([]types.Skill, error) {
	if strings.TrimSpace(filter.Query) == "" &&
		strings.TrimSpace(filter.Category) == "" &&
		strings.TrimSpace(filter.Location) == "" {
		return nil, validationErrorf("at least one search parameter is required")
	}
	return s.repo.Search(ctx, filter)
}

func (s *SkillService) Get(ctx context.Context, id string) (types.Skill, error) {
	return s.repo.Get(ctx, id)
}

func (s *SkillService) Create(ctx context.Context, input CreateSkillInput) (types.Skill, error) {
	if err := s.validate.Struct(input); err != nil {
		return types.Skill{}, describeSkillValidation(err)
	}

	skill := types.Skill{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		UserName:    strings.TrimSpace(input.UserName),
		UserEmail:   strings.TrimSpace(input.UserEmail),
		Category:    strings.TrimSpace(input.Category),
		Location:    strings.TrimSpace(input.Location),
		IsAvailable: true,
	}
	return s.repo.Create(ctx, skill)
}

// Update applies the editable fields to a listing. Only the owner (by
// email match) or an admin may update.
func (s *SkillService) Update(ctx context.Context, id, callerEmail string, isAdmin bool, input UpdateSkillInput) (types.Skill, error) {
	skill, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Skill{}, err
	}
	if !isAdmin && !strings.EqualFold(skill.UserEmail, callerEmail) {
		return types.Skill{}, ErrNotOwner
	}

	if input.Title != nil {
		if len(strings.TrimSpace(*input.Title)) < 5 {
			return types.Skill{}, validationErrorf("title must be at least 5 characters long")
		}
		skill.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		if len(strings.TrimSpace(*input.Description)) < 20 {
			return types.Skill{}, validationErrorf("description must be at least 20 characters long")
		}
		skill.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		skill.Category = strings.TrimSpace(*input.Category)
	}
	if input.Location != nil {
		skill.Location = strings.TrimSpace(*input.Location)
	}
	if input.IsAvailable != nil {
		skill.IsAvailable = *input.IsAvailable
	}

	return s.repo.Update(ctx, skill)
}

// Delete removes a listing. Only the owner or an admin may delete.
func (s *SkillService) Delete(ctx context.Context, id, callerEmail string, isAdmin bool) error {
	skill, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && !strings.EqualFold(skill.UserEmail, callerEmail) {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, id)
}

// AdminDelete removes any listing and returns it for the response body.
func (s *SkillService) AdminDelete(ctx context.Context, id string) (types.Skill, error) {
	skill, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Skill{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return types.Skill{}, err
	}
	return skill, nil
}

func describeSkillValidation(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return validationErrorf("invalid request")
	}

	field := fields[0]
	switch field.Field() {
	case "Title":
		return validationErrorf("title must be at least 5 characters long")
	case "Description":
		return validationErrorf("description must be at least 20 characters long")
	case "UserEmail":
		return validationErrorf("invalid email address")
	default:
		return validationErrorf("missing required field: " + field.Field())
	}
}
