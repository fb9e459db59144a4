package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ordertrail/ordertrail/internal/common"
)

// Well-known settings keys and their defaults. Multi-value settings are
// persisted as JSON arrays, never as language expressions.
const (
	SettingVendors  = "vendors"
	SettingStatuses = "statuses"
)

// DefaultVendors is the vendor list used until one is configured.
var DefaultVendors = []string{"Amazon", "Noon", "Namshi", "Sharaf DG", "Carrefour", "Other"}

// DefaultStatuses is the status list used until one is configured.
var DefaultStatuses = []string{"Ordered", "Shipped", "Out for Delivery", "Delivered"}

// GetSetting retrieves a raw setting value.
func (s *SQLiteStorage) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, err
	}

	var value sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	if !value.Valid {
		return nil, nil
	}
	return json.RawMessage(value.String), nil
}

// SetSetting stores a raw setting value, replacing any existing one.
func (s *SQLiteStorage) SetSetting(ctx context.Context, key string, value json.RawMessage) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("%w: setting %s value is not valid JSON", common.ErrInvalidConfig, key)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// ListSettings returns all settings as raw values keyed by name.
func (s *SQLiteStorage) ListSettings(ctx context.Context) (map[string]json.RawMessage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		if value.Valid {
			settings[key] = json.RawMessage(value.String)
		} else {
			settings[key] = nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return settings, nil
}

// GetStringList reads a JSON-array setting, falling back to defaults when
// the setting is absent or not a valid array.
func (s *SQLiteStorage) GetStringList(ctx context.Context, key string, defaults []string) []string {
	raw, err := s.GetSetting(ctx, key)
	if err != nil || len(raw) == 0 {
		return defaults
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return defaults
	}
	return list
}

// SetStringList stores a list setting as a JSON array.
func (s *SQLiteStorage) SetStringList(ctx context.Context, key string, values []string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	return s.SetSetting(ctx, key, raw)
}
