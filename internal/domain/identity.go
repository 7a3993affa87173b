// Identity is the resolved caller of a request. The session middleware
// resolves it exactly once per inbound request and attaches it to the
// request context; handlers consume it from there and never re-resolve,
// even if the session store mutates mid-request.
package domain

// Identity is a tagged value: either an authenticated customer/admin bound
// to a stored user row, or the anonymous caller. No identity claim is ever
// taken from the client beyond the opaque session token that produced it.
//
// The zero value is Anonymous.
type Identity struct {
	// UserID is the stored user's primary key. Zero for Anonymous.
	UserID uint
	// Role is the user's role (RoleCustomer or RoleAdmin). Empty for Anonymous.
	Role string
	// Authenticated is the variant tag. When false the other fields are zero.
	Authenticated bool
}

// Anonymous is the well-defined identity of an unauthenticated request.
// A missing, expired, or dangling session token resolves to it rather than
// to an error.
var Anonymous = Identity{}

// AuthenticatedAs builds the identity for a resolved user row.
func AuthenticatedAs(u *User) Identity {
	return Identity{UserID: u.ID, Role: u.Role, Authenticated: true}
}

// IsAdmin reports whether the caller is an authenticated admin.
func (id Identity) IsAdmin() bool {
	return id.Authenticated && id.Role == RoleAdmin
}
