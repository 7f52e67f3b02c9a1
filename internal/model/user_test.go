package model

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParseRole(t *testing.T) {
	for _, name := range []string{"admin", "editeur", "lecteur"} {
		if _, ok := ParseRole(name); !ok {
			t.Errorf("expected %q to be a role", name)
		}
	}
	if _, ok := ParseRole("ADMIN"); ok {
		t.Errorf("role names are case sensitive")
	}
}

func TestRoleSetCan(t *testing.T) {
	tests := []struct {
		roles RoleSet
		cap   Capability
		want  bool
	}{
		{NewRoleSet(RoleAdmin), CapManageUsers, true},
		{NewRoleSet(RoleEditor), CapManageUsers, false},
		{NewRoleSet(RoleEditor), CapEditCatalog, true},
		{NewRoleSet(RoleViewer), CapEditCatalog, false},
		{NewRoleSet(RoleViewer), CapReadCatalog, true},
		{NewRoleSet(), CapReadCatalog, false},
		{NewRoleSet(RoleViewer, RoleEditor), CapEditCatalog, true},
	}
	for _, tt := range tests {
		if got := tt.roles.Can(tt.cap); got != tt.want {
			t.Errorf("%v.Can(%d) = %v, want %v", tt.roles.Slice(), tt.cap, got, tt.want)
		}
	}
}

func TestAuthorize(t *testing.T) {
	if err := Authorize(nil, RoleAdmin); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("nil user: got %v", err)
	}
	viewer := &User{Username: "v", Roles: NewRoleSet(RoleViewer)}
	if err := Authorize(viewer, RoleAdmin, RoleEditor); !errors.Is(err, ErrForbidden) {
		t.Errorf("viewer on editor route: got %v", err)
	}
	if err := Authorize(viewer, RoleEditor, RoleViewer); err != nil {
		t.Errorf("viewer on viewer route: got %v", err)
	}
}

func TestParseBookSort(t *testing.T) {
	if ParseBookSort("title_asc") != SortTitleAsc {
		t.Errorf("title_asc not parsed")
	}
	if ParseBookSort("bogus") != SortCreatedDesc {
		t.Errorf("unknown sort should default to created_desc")
	}
	if ParseBookSort("") != SortCreatedDesc {
		t.Errorf("empty sort should default to created_desc")
	}
}
