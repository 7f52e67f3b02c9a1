package validator

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/store"
)

func ValidateUserCreateRequest(ctx context.Context, s *store.Store, user *model.UserCreateRequest) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if err := Struct(user); err != nil {
		return err
	}
	existing, err := s.GetUser(ctx, &model.FindUser{Username: &user.Username})
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("username already exists")
	}
	return nil
}

func ValidatePasswordReset(req *model.PasswordResetRequest) error {
	if req == nil {
		return errors.New("request is nil")
	}
	return Struct(req)
}
