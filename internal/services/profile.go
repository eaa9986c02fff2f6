package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/oshawa-skills/apiserver/internal/store"
	"github.com/oshawa-skills/apiserver/types"
)

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	phoneRe = regexp.MustCompile(`^\+?[\d\s\-()]{7,20}$`)
)

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (types.Profile, error)
	Create(ctx context.Context, profile types.Profile) (types.Profile, error)
	Update(ctx context.Context, profile types.Profile) (types.Profile, error)
}

// ProfileService encapsulates profile use-cases. Profiles are keyed by
// the identity-provider subject and created lazily on first read, seeded
// from token claims.
type ProfileService struct {
	repo ProfileRepository
}

func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// GetOrCreate returns the caller's profile, creating it from the token
// claims when it does not exist yet.
func (s *ProfileService) GetOrCreate(ctx context.Context, claims types.Claims) (types.Profile, error) {
	profile, err := s.repo.Get(ctx, claims.Subject)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.Profile{}, err
	}

	return s.repo.Create(ctx, types.Profile{
		UserID:          claims.Subject,
		Email:           claims.Email,
		Name:            claims.Name,
		CertifiedSkills: []string{},
	})
}

// Update applies the editable contact fields to the caller's profile.
// Identity fields and certification state cannot be changed here.
func (s *ProfileService) Update(ctx context.Context, userID string, input types.ProfileUpdate) (types.Profile, error) {
	if input.DateOfBirth != nil && *input.DateOfBirth != "" && !dateRe.MatchString(*input.DateOfBirth) {
		return types.Profile{}, validationErrorf("dateOfBirth must be in YYYY-MM-DD format")
	}
	if input.PhoneNumber != nil && *input.PhoneNumber != "" && !phoneRe.MatchString(*input.PhoneNumber) {
		return types.Profile{}, validationErrorf("invalid phone number")
	}

	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return types.Profile{}, err
	}

	if input.PhoneNumber != nil {
		profile.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Address != nil {
		profile.Address = strings.TrimSpace(*input.Address)
	}
	if input.DateOfBirth != nil {
		profile.DateOfBirth = strings.TrimSpace(*input.DateOfBirth)
	}

	return s.repo.Update(ctx, profile)
}
