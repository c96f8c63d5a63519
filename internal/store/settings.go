package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
)

// ListSettings retrieves all settings ordered by key.
func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := s.db.SelectContext(ctx, &settings, `SELECT * FROM settings ORDER BY key`)
	if err != nil {
		return nil, classifyErr(err)
	}
	return settings, nil
}

// GetSetting retrieves a single setting by key.
func (s *Store) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := s.db.GetContext(ctx, &setting, `SELECT * FROM settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrSettingNotFound, key)
	}
	if err != nil {
		return nil, classifyErr(err)
	}
	return &setting, nil
}

// UpsertSetting creates or replaces a setting.
func (s *Store) UpsertSetting(ctx context.Context, setting *models.Setting) error {
	err := s.db.GetContext(ctx, &setting.UpdatedAt, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING updated_at`,
		setting.Key, setting.Value)
	if err != nil {
		return classifyErr(err)
	}
	return nil
}

// DeleteSetting removes a setting by key.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return classifyErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classifyErr(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrSettingNotFound, key)
	}
	return nil
}
