package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Cursor is the keyset position of the last row returned by a listing
// query. Its encoded form is the opaque continuation token handed to
// clients; the next page resumes strictly after (CreatedAt, ID).
type Cursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor parses a continuation token. An empty token yields a nil
// cursor, meaning "start from the newest row".
func DecodeCursor(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.New("invalid cursor")
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.New("invalid cursor")
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return nil, errors.New("invalid cursor")
	}
	return &c, nil
}
