package types

// Claims are the decoded bearer-token fields identifying the caller.
// The token is issued and verified upstream by the hosted identity
// provider; this server only reads the claims.
type Claims struct {
	// Subject is the stable user identifier (the "sub" claim).
	Subject string

	// Email is the verified address from the token.
	Email string

	// Name is the display name, falling back to the provider username
	// when no name claim is present.
	Name string

	// Groups are the identity-provider group memberships. Admin access
	// is granted by membership in the configured admin group.
	Groups []string
}

// InGroup reports whether the claims carry the named group.
func (c Claims) InGroup(name string) bool {
	for _, g := range c.Groups {
		if g == name {
			return true
		}
	}
	return false
}
