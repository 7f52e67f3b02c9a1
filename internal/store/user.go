package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/model"
)

func (s *Store) GetUser(ctx context.Context, find *model.FindUser) (*model.User, error) {
	list, err := s.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListUsers returns the users with their roles. password_hash is read too,
// responses must go through the response package to drop it.
func (s *Store) ListUsers(ctx context.Context, find *model.FindUser) ([]*model.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = ?"), append(args, *v)
	}

	query := `
		SELECT
			id,
			username,
			email,
			password_hash,
			created_ts,
			updated_ts,
			last_login_ts,
			row_status
		FROM user
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY username`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		log.Debug("Error querying users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.User, 0)
	byID := make(map[int32]*model.User)
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.CreatedTs,
			&user.UpdatedTs,
			&user.LastLoginTs,
			&user.RowStatus,
		); err != nil {
			return nil, err
		}
		user.Roles = model.NewRoleSet()
		list = append(list, &user)
		byID[user.ID] = &user
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(list) == 0 {
		return list, nil
	}

	ids := make([]int32, 0, len(list))
	for _, user := range list {
		ids = append(ids, user.ID)
	}
	placeholders, roleArgs := inClause(ids)
	roleRows, err := s.query(ctx, `
		SELECT ur.user_id, r.name
		FROM user_role ur JOIN role r ON r.id = ur.role_id
		WHERE ur.user_id IN (`+placeholders+`)`, roleArgs...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user roles")
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var userID int32
		var name string
		if err := roleRows.Scan(&userID, &name); err != nil {
			return nil, err
		}
		role, ok := model.ParseRole(name)
		if !ok {
			log.Warn("Ignoring unknown role", zap.String("role", name))
			continue
		}
		if user := byID[userID]; user != nil {
			user.Roles[role] = struct{}{}
		}
	}
	if err := roleRows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// CreateUser inserts the user and its roles in one transaction.
func (s *Store) CreateUser(ctx context.Context, create *model.User) (*model.User, error) {
	var user *model.User
	err := s.WithTx(ctx, func(tx *Store) error {
		stmt := `
			INSERT INTO user (
				username, email, password_hash
			) VALUES (?, ?, ?)
			RETURNING id, username, email, created_ts, updated_ts, last_login_ts, row_status`
		var created model.User
		if err := tx.queryRow(ctx, stmt, create.Username, create.Email, create.PasswordHash).Scan(
			&created.ID,
			&created.Username,
			&created.Email,
			&created.CreatedTs,
			&created.UpdatedTs,
			&created.LastLoginTs,
			&created.RowStatus,
		); err != nil {
			return errors.Wrap(err, "failed to create user")
		}
		if err := tx.SetUserRoles(ctx, created.ID, create.Roles.Slice()); err != nil {
			return err
		}
		created.Roles = model.NewRoleSet(create.Roles.Slice()...)
		created.PasswordHash = create.PasswordHash
		user = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetUserRoles replaces the roles of a user. The roles must exist in the
// role table, which the seed command fills.
func (s *Store) SetUserRoles(ctx context.Context, userID int32, roles []model.Role) error {
	return s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.exec(ctx, "DELETE FROM user_role WHERE user_id = ?", userID); err != nil {
			return errors.Wrap(err, "failed to clear user roles")
		}
		for _, role := range roles {
			var roleID int32
			if err := tx.queryRow(ctx, "SELECT id FROM role WHERE name = ?", string(role)).Scan(&roleID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errors.Errorf("role %s does not exist, run the seed command", role)
				}
				return err
			}
			if _, err := tx.exec(ctx, "INSERT INTO user_role (user_id, role_id) VALUES (?, ?)", userID, roleID); err != nil {
				return errors.Wrapf(err, "failed to grant role %s", role)
			}
		}
		return nil
	})
}

func (s *Store) SetPasswordHash(ctx context.Context, userID int32, hash string) error {
	stmt := "UPDATE user SET password_hash = ?, updated_ts = strftime('%s', 'now') WHERE id = ?"
	if _, err := s.exec(ctx, stmt, hash, userID); err != nil {
		return errors.Wrap(err, "failed to update password")
	}
	return nil
}

func (s *Store) SetLastLogin(ctx context.Context, userID int32) error {
	if _, err := s.exec(ctx, "UPDATE user SET last_login_ts = strftime('%s', 'now') WHERE id = ?", userID); err != nil {
		return errors.Wrap(err, "unable to update last login date")
	}
	return nil
}

// ListRoles returns the role names stored in the role table.
func (s *Store) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := s.query(ctx, "SELECT name FROM role ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.Role, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if role, ok := model.ParseRole(name); ok {
			list = append(list, role)
		}
	}
	return list, rows.Err()
}
