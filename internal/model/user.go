package model

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrNotAuthenticated means no valid session accompanies the request.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden means the user is known but holds none of the accepted roles.
	ErrForbidden = errors.New("forbidden")
)

// Role is the type of a role. The values are the names stored in the role table.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editeur"
	RoleViewer Role = "lecteur"
)

var Roles = []Role{RoleAdmin, RoleEditor, RoleViewer}

func (e Role) String() string {
	return string(e)
}

// ParseRole returns false for names that are not a known role.
func ParseRole(name string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == name {
			return r, true
		}
	}
	return "", false
}

// Capability is something a route requires from the current user.
type Capability int

const (
	// CapReadCatalog covers browsing, searching and exporting.
	CapReadCatalog Capability = iota
	// CapEditCatalog covers book and reference mutations and imports.
	CapEditCatalog
	// CapManageUsers covers the admin pages.
	CapManageUsers
)

// AcceptedRoles lists the roles granting a capability.
func (c Capability) AcceptedRoles() []Role {
	switch c {
	case CapReadCatalog:
		return []Role{RoleAdmin, RoleEditor, RoleViewer}
	case CapEditCatalog:
		return []Role{RoleAdmin, RoleEditor}
	case CapManageUsers:
		return []Role{RoleAdmin}
	}
	return nil
}

type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Intersects reports whether at least one of accepted is in the set.
func (s RoleSet) Intersects(accepted ...Role) bool {
	for _, r := range accepted {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) Can(c Capability) bool {
	return s.Intersects(c.AcceptedRoles()...)
}

// Slice returns the roles sorted by name.
func (s RoleSet) Slice() []Role {
	list := make([]Role, 0, len(s))
	for r := range s {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// Authorize checks a possibly nil user against the accepted roles.
func Authorize(user *User, accepted ...Role) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	if !user.Roles.Intersects(accepted...) {
		return ErrForbidden
	}
	return nil
}

// RowStatus is the status for a row.
type RowStatus string

const (
	Normal   RowStatus = "NORMAL"
	Archived RowStatus = "ARCHIVED"
)

type User struct {
	ID int32 `json:"id"`

	RowStatus RowStatus `json:"row_status"`
	CreatedTs int64     `json:"created_ts"`
	UpdatedTs int64     `json:"updated_ts"`

	Username     string  `json:"username"`
	Email        string  `json:"email,omitempty"`
	PasswordHash string  `json:"-"`
	Roles        RoleSet `json:"-"`
	LastLoginTs  int64   `json:"last_login_ts"`
}

type FindUser struct {
	ID       *int32
	Username *string
}

type UserCreateRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"omitempty,email"`
	Roles    []Role `json:"roles" validate:"dive,role"`
}

type PasswordResetRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type UserSigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
