package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/util"
)

const sessionSecretLength = 48

func (s *Store) GetSystemSetting(ctx context.Context, name string) (*model.SystemSetting, error) {
	setting := &model.SystemSetting{}
	stmt := "SELECT name, value, description FROM system_setting WHERE name = ?"
	if err := s.queryRow(ctx, stmt, name).Scan(&setting.Name, &setting.Value, &setting.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get system setting")
	}
	return setting, nil
}

func (s *Store) UpsertSystemSetting(ctx context.Context, setting *model.SystemSetting) (*model.SystemSetting, error) {
	stmt := `
	INSERT INTO system_setting (
		name, value, description
	)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE
	SET
		value = EXCLUDED.value,
		description = EXCLUDED.description
	`
	if _, err := s.exec(ctx, stmt, setting.Name, setting.Value, setting.Description); err != nil {
		return nil, errors.Wrap(err, "failed to insert/update system setting")
	}
	return setting, nil
}

// GetOrCreateSessionSecret returns the persisted session signing secret,
// generating one on first use.
func (s *Store) GetOrCreateSessionSecret(ctx context.Context) (string, error) {
	var secret string
	err := s.WithTx(ctx, func(tx *Store) error {
		setting, err := tx.GetSystemSetting(ctx, model.SettingTypeSecurity)
		if err != nil {
			return err
		}
		if setting != nil {
			security, err := setting.GetSecurity()
			if err != nil {
				return errors.Wrap(err, "failed to unmarshal security settings")
			}
			if security.SessionSecret != "" {
				secret = security.SessionSecret
				return nil
			}
		}

		log.Debug("No session secret found, create it")
		generated, err := util.RandomString(sessionSecretLength)
		if err != nil {
			return errors.Wrap(err, "failed to generate session secret")
		}
		security := &model.SystemSettingSecurity{SessionSecret: generated}
		if _, err := tx.UpsertSystemSetting(ctx, &model.SystemSetting{
			Name:        model.SettingTypeSecurity,
			Value:       security.ToJSON(),
			Description: "session signing secret",
		}); err != nil {
			return err
		}
		secret = generated
		return nil
	})
	if err != nil {
		return "", err
	}
	return secret, nil
}
