package domain

import (
	"strings"
	"time"
)

// ColorScheme is the display theme preference.
type ColorScheme string

// MeasurementSystem selects the units used when rendering weights and distances.
type MeasurementSystem string

const (
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
	ColorSchemeSystem ColorScheme = "system"

	MeasurementMetric   MeasurementSystem = "metric"
	MeasurementImperial MeasurementSystem = "imperial"
)

// Valid reports whether c is a known color scheme.
func (c ColorScheme) Valid() bool {
	switch c {
	case ColorSchemeLight, ColorSchemeDark, ColorSchemeSystem:
		return true
	}
	return false
}

// Valid reports whether m is a known measurement system.
func (m MeasurementSystem) Valid() bool {
	switch m {
	case MeasurementMetric, MeasurementImperial:
		return true
	}
	return false
}

// Preferences holds per-user display settings. Zero values mean "not set".
type Preferences struct {
	ColorScheme       ColorScheme       `json:"colorScheme" bson:"colorScheme,omitempty"`
	MeasurementSystem MeasurementSystem `json:"measurementSystem" bson:"measurementSystem,omitempty"`
}

// DefaultPreferences are applied for any setting a user has not stored.
func DefaultPreferences() Preferences {
	return Preferences{ColorScheme: ColorSchemeSystem, MeasurementSystem: MeasurementMetric}
}

// Merged overlays the stored values on top of the defaults.
func (p Preferences) Merged() Preferences {
	out := DefaultPreferences()
	if p.ColorScheme != "" {
		out.ColorScheme = p.ColorScheme
	}
	if p.MeasurementSystem != "" {
		out.MeasurementSystem = p.MeasurementSystem
	}
	return out
}

// User is a persisted account record.
type User struct {
	ID             string      `json:"id" bson:"_id"`
	Email          string      `json:"email" bson:"email"`
	PasswordHash   string      `json:"-" bson:"passwordHash"`
	Name           string      `json:"name" bson:"name"`
	ResetTokenHash string      `json:"-" bson:"resetTokenHash,omitempty"`
	ResetExpiresAt *time.Time  `json:"-" bson:"resetExpiresAt,omitempty"`
	Preferences    Preferences `json:"preferences" bson:"preferences"`
	CreatedAt      time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
