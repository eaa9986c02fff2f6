package services

import (
	"context"
	"testing"
	"time"

	"github.com/oshawa-skills/apiserver/internal/store"
	"github.com/oshawa-skills/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileRepo struct {
	profiles map[string]types.Profile
	created  int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]types.Profile{}}
}

func (f *fakeProfileRepo) Get(_ context.Context, userID string) (types.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, profile types.Profile) (types.Profile, error) {
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	f.profiles[profile.UserID] = profile
	f.created++
	return profile, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, profile types.Profile) (types.Profile, error) {
	if _, ok := f.profiles[profile.UserID]; !ok {
		return types.Profile{}, store.ErrNotFound
	}
	profile.UpdatedAt = time.Now()
	f.profiles[profile.UserID] = profile
	return profile, nil
}

func TestGetOrCreateSeedsFromClaims(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo)

	claims := types.Claims{Subject: "user-1", Email: "pat@example.com", Name: "Pat Lee"}

	profile, err := svc.GetOrCreate(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, "pat@example.com", profile.Email)
	assert.Equal(t, "Pat Lee", profile.Name)
	assert.False(t, profile.IsCertified)
	assert.Empty(t, profile.CertifiedSkills)

	// Second read returns the stored row without creating again.
	_, err = svc.GetOrCreate(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.created)
}

func TestUpdateProfileAllowListedFields(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo)

	claims := types.Claims{Subject: "user-1", Email: "pat@example.com", Name: "Pat Lee"}
	_, err := svc.GetOrCreate(context.Background(), claims)
	require.NoError(t, err)

	phone := "+1 905-555-0101"
	address := "123 Simcoe St N"
	dob := "1990-07-15"

	profile, err := svc.Update(context.Background(), "user-1", types.ProfileUpdate{
		PhoneNumber: &phone,
		Address:     &address,
		DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.Equal(t, phone, profile.PhoneNumber)
	assert.Equal(t, address, profile.Address)
	assert.Equal(t, dob, profile.DateOfBirth)

	// Identity fields survive untouched.
	assert.Equal(t, "pat@example.com", profile.Email)
	assert.Equal(t, "Pat Lee", profile.Name)
}

func TestUpdateProfileFormatValidation(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo)

	_, err := svc.GetOrCreate(context.Background(), types.Claims{Subject: "user-1", Email: "pat@example.com"})
	require.NoError(t, err)

	badDOB := "15/07/1990"
	_, err = svc.Update(context.Background(), "user-1", types.ProfileUpdate{DateOfBirth: &badDOB})
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)

	badPhone := "call me"
	_, err = svc.Update(context.Background(), "user-1", types.ProfileUpdate{PhoneNumber: &badPhone})
	require.ErrorAs(t, err, &invalid)
}

func TestUpdateProfileMissingUser(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo())

	address := "somewhere"
	_, err := svc.Update(context.Background(), "ghost", types.ProfileUpdate{Address: &address})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
