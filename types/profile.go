package types

import "time"

// Profile represents a member of the skills exchange.
// One profile exists per identity-provider subject and is created lazily
// the first time the user reads it.
type Profile struct {
	// UserID is the stable subject identifier issued by the identity
	// provider. It never changes for the lifetime of the account.
	UserID string `json:"userId" db:"user_id"`

	// Email is the address the identity provider vouched for.
	// It is copied from token claims at creation and never editable.
	Email string `json:"email" db:"email"`

	// Name is the display name from token claims. Not editable.
	Name string `json:"name" db:"name"`

	// PhoneNumber is an optional contact number. Editable.
	PhoneNumber string `json:"phoneNumber,omitempty" db:"phone_number"`

	// Address is an optional street address. Editable.
	Address string `json:"address,omitempty" db:"address"`

	// DateOfBirth is an optional date in YYYY-MM-DD form. Editable.
	DateOfBirth string `json:"dateOfBirth,omitempty" db:"date_of_birth"`

	// IsCertified reports whether the user holds at least one approved
	// certification. Maintained only by the review workflow.
	IsCertified bool `json:"isCertified" db:"is_certified"`

	// CertifiedSkills is the set of skill categories covered by the
	// user's approved certifications. Maintained only by the review
	// workflow; contains no duplicates.
	CertifiedSkills []string `json:"certifiedSkills" db:"certified_skills"`

	// CreatedAt is the timestamp when the profile was first created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ProfileUpdate carries the editable subset of a profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Address     *string `json:"address,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}
