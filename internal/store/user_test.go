package store

import (
	"context"
	"testing"

	"github.com/Xunop/library-tracker/internal/model"
)

func TestCreateUserWithRoles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.CreateUser(ctx, &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Roles:        model.NewRoleSet(model.RoleEditor, model.RoleViewer),
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	username := "alice"
	got, err := s.GetUser(ctx, &model.FindUser{Username: &username})
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if got.ID != user.ID || got.PasswordHash != "hash" {
		t.Fatalf("Unexpected user %+v", got)
	}
	if !got.Roles.Can(model.CapEditCatalog) || got.Roles.Can(model.CapManageUsers) {
		t.Errorf("Unexpected roles %v", got.Roles.Slice())
	}

	if err := s.SetUserRoles(ctx, user.ID, []model.Role{model.RoleAdmin}); err != nil {
		t.Fatalf("Failed to set roles: %v", err)
	}
	got, _ = s.GetUser(ctx, &model.FindUser{ID: &user.ID})
	if got.Roles.Has(model.RoleEditor) || !got.Roles.Has(model.RoleAdmin) {
		t.Errorf("Roles were not replaced: %v", got.Roles.Slice())
	}

	if _, err := s.CreateUser(ctx, &model.User{Username: "alice", PasswordHash: "x"}); err == nil {
		t.Errorf("Expected a duplicate username to fail")
	}
}

func TestSetPasswordAndLastLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.CreateUser(ctx, &model.User{Username: "bob", PasswordHash: "old"})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if err := s.SetPasswordHash(ctx, user.ID, "new"); err != nil {
		t.Fatalf("Failed to set password: %v", err)
	}
	if err := s.SetLastLogin(ctx, user.ID); err != nil {
		t.Fatalf("Failed to set last login: %v", err)
	}
	got, _ := s.GetUser(ctx, &model.FindUser{ID: &user.ID})
	if got.PasswordHash != "new" || got.LastLoginTs == 0 {
		t.Errorf("Unexpected user %+v", got)
	}
	if len(got.Roles) != 0 {
		t.Errorf("Expected no roles, got %v", got.Roles.Slice())
	}

	missing := "nobody"
	none, err := s.GetUser(ctx, &model.FindUser{Username: &missing})
	if err != nil || none != nil {
		t.Errorf("Expected nil for an unknown user, got %+v, %v", none, err)
	}
}

func TestListRoles(t *testing.T) {
	s := newTestStore(t)
	roles, err := s.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("Failed to list roles: %v", err)
	}
	if len(roles) != 3 || roles[0] != model.RoleAdmin {
		t.Errorf("Unexpected roles %v", roles)
	}
}

func TestSetUnknownRole(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user, _ := s.CreateUser(ctx, &model.User{Username: "carol", PasswordHash: "x"})
	if err := s.SetUserRoles(ctx, user.ID, []model.Role{"owner"}); err == nil {
		t.Errorf("Expected an error for a role missing from the table")
	}
}
