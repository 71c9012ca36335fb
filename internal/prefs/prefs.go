// Package prefs persists the two UI preferences (color theme and brand
// accent color). Preferences are durable across sessions and independent
// of authentication state.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaziflow/kazi-sync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Preference keys and defaults.
const (
	KeyTheme        = "kazi-theme"
	KeyPrimaryColor = "kazi-primary-color"

	ThemeLight = "light"
	ThemeDark  = "dark"

	DefaultTheme        = ThemeDark
	DefaultPrimaryColor = "#0a777b"
)

// Store reads and writes preference rows.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open preference database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the raw string value for a key, or ok=false when absent.
func (s *Store) Get(key string) (string, bool, error) {
	var row models.Preference
	err := s.db.Where("preference_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read preference %s: %w", key, err)
	}

	var value string
	if err := json.Unmarshal(row.Value.JSON, &value); err != nil {
		return "", false, fmt.Errorf("decode preference %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes a value for a key, replacing any existing row.
func (s *Store) Set(key, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode preference %s: %w", key, err)
	}

	row := models.Preference{PreferenceKey: key}
	row.Value.JSON = raw

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "preference_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}

// Theme returns the saved color theme, falling back to the default for
// absent or unrecognized values.
func (s *Store) Theme() (string, error) {
	v, ok, err := s.Get(KeyTheme)
	if err != nil {
		return "", err
	}
	if !ok || (v != ThemeLight && v != ThemeDark) {
		return DefaultTheme, nil
	}
	return v, nil
}

// SetTheme validates and saves the color theme.
func (s *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("invalid theme %q", theme)
	}
	return s.Set(KeyTheme, theme)
}

// PrimaryColor returns the saved brand accent color, falling back to the
// default when absent.
func (s *Store) PrimaryColor() (string, error) {
	v, ok, err := s.Get(KeyPrimaryColor)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return DefaultPrimaryColor, nil
	}
	return v, nil
}

// SetPrimaryColor validates the hex value and saves it.
func (s *Store) SetPrimaryColor(hex string) error {
	if _, err := HexToHSL(hex); err != nil {
		return err
	}
	return s.Set(KeyPrimaryColor, hex)
}
