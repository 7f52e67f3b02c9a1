package v1

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/library-tracker/internal/api/auth"
	"github.com/Xunop/library-tracker/internal/http/request"
	"github.com/Xunop/library-tracker/internal/http/response"
	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/validator"
)

type userRolesRequest struct {
	Roles []model.Role `json:"roles" validate:"dive,role"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), &model.FindUser{})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, newUserListResponse(users))
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.ListRoles(r.Context())
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, roles)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var create model.UserCreateRequest
	if err := h.bind(w, r, &create); err != nil {
		badInput(w, r, err)
		return
	}
	create.Username = strings.TrimSpace(create.Username)
	create.Email = strings.TrimSpace(create.Email)

	if err := validator.ValidateUserCreateRequest(r.Context(), h.store, &create); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	passwordHash, err := auth.HashPassword(create.Password)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	newUser, err := h.store.CreateUser(r.Context(), &model.User{
		Username:     create.Username,
		Email:        create.Email,
		PasswordHash: passwordHash,
		Roles:        model.NewRoleSet(create.Roles...),
	})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	log.Info("User created",
		zap.String("username", newUser.Username),
		zap.String("created_by", request.User(r).Username),
	)
	response.Created(w, r, newUserResponse(newUser))
}

// setUserRoles replaces the roles of a user. Admins cannot drop their own
// admin role, so the instance always keeps one.
func (h *Handler) setUserRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := request.RouteIntParam(r, "id")
	user, err := h.store.GetUser(ctx, &model.FindUser{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if user == nil {
		response.NotFound(w, r)
		return
	}

	var req userRolesRequest
	if err := h.bind(w, r, &req); err != nil {
		badInput(w, r, err)
		return
	}
	if err := validator.Struct(&req); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	roles := model.NewRoleSet(req.Roles...)
	if user.ID == request.User(r).ID && !roles.Has(model.RoleAdmin) {
		response.BadRequest(w, r, errors.New("you cannot remove your own admin role"))
		return
	}

	if err := h.store.SetUserRoles(ctx, user.ID, roles.Slice()); err != nil {
		response.ServerError(w, r, err)
		return
	}
	user.Roles = roles
	response.OK(w, r, newUserResponse(user))
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := request.RouteIntParam(r, "id")
	user, err := h.store.GetUser(ctx, &model.FindUser{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if user == nil {
		response.NotFound(w, r)
		return
	}

	var req model.PasswordResetRequest
	if err := h.bind(w, r, &req); err != nil {
		badInput(w, r, err)
		return
	}
	if err := validator.ValidatePasswordReset(&req); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if err := h.store.SetPasswordHash(ctx, user.ID, passwordHash); err != nil {
		response.ServerError(w, r, err)
		return
	}
	log.Info("Password reset", zap.String("username", user.Username))
	response.NoContent(w, r)
}
