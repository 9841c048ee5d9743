package domain

import "time"

// DateLayout is the wire format of calendar dates such as birthDate.
const DateLayout = "2006-01-02"

// Role is the authority attached to a user. It never changes after creation.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

var (
	RoleAdmin = Role{ID: 1, Name: "ADMIN"}
	RoleUser  = Role{ID: 2, Name: "USER"}
)

// RoleByName resolves a stored role name. Unknown names fall back to RoleUser
// so a corrupted record can never escalate to admin.
func RoleByName(name string) Role {
	if name == RoleAdmin.Name {
		return RoleAdmin
	}
	return RoleUser
}

// User models an account managed by the service.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PhoneNumber  string    `json:"phoneNumber"`
	Email        string    `json:"email"`
	BirthDate    time.Time `json:"birthDate"`
	Enabled      bool      `json:"isEnabled"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   int64
	Username string
	Role     Role
	Enabled  bool
}

// HasRole reports whether the principal carries the given role.
func (p *Principal) HasRole(r Role) bool {
	return p != nil && p.Role.Name == r.Name
}

// PrincipalOf derives the request principal from a stored user.
func PrincipalOf(u *User) *Principal {
	return &Principal{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		Enabled:  u.Enabled,
	}
}

// UserPatch is a sparse partial update: nil fields are left untouched.
type UserPatch struct {
	FirstName   *string
	LastName    *string
	BirthDate   *time.Time
	PhoneNumber *string
	Email       *string
}
