package types

import "time"

// Skill represents a single skill listing posted to the marketplace.
type Skill struct {
	// ID is the unique identifier of the listing.
	ID string `json:"skillId" db:"id"`

	// Title is the short headline of the listing. At least 5 characters.
	Title string `json:"title" db:"title"`

	// Description explains what is offered. At least 20 characters.
	Description string `json:"description" db:"description"`

	// UserName is the display name of the poster, stored as plain text.
	UserName string `json:"userName" db:"user_name"`

	// UserEmail is the poster's contact address, stored as plain text.
	// Listings have no foreign key to profiles; ownership checks and the
	// certified-flag join both match on this address.
	UserEmail string `json:"userEmail" db:"user_email"`

	// Category is the marketplace category (Technology, Health, ...).
	Category string `json:"category" db:"category"`

	// Location is the free-form neighbourhood or area served.
	Location string `json:"location" db:"location"`

	// IsAvailable controls visibility in listings and search.
	IsAvailable bool `json:"isAvailable" db:"is_available"`

	// IsCertified reports whether the listing's owner currently holds an
	// approved certification. Computed at read time from the owner's
	// profile, never stored on the listing row.
	IsCertified bool `json:"isCertified" db:"-"`

	// CreatedAt is the timestamp when the listing was posted.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// SkillFilter narrows a listing query. Zero values mean "no filter".
type SkillFilter struct {
	// Query is matched as a substring against title, description and
	// poster name.
	Query string

	// Category restricts results to one category. The literal "all" is
	// treated the same as empty.
	Category string

	// Location is matched as a substring against the listing location.
	Location string
}

// SkillPage is one page of listings plus the continuation cursor for the
// next page. An empty cursor means the scan is exhausted.
type SkillPage struct {
	Skills     []Skill `json:"skills"`
	NextCursor string  `json:"nextCursor,omitempty"`
	Total      int     `json:"total"`
}
