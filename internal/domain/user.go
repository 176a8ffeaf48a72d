package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// User is a registered account. The password hash never leaves the store.
type User struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Location *UserLocation `json:"location,omitempty"`
}

// UserLocation is where the user lives, as typed during location setup.
// Coordinates are filled in by geocoding when available.
type UserLocation struct {
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Coordinates  *Geo   `json:"coordinates,omitempty"`
	PlaceName    string `json:"placeName,omitempty"`
}

// Registration is the input of the sign-up form.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the input of the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate requires every field and a parseable email address.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return fmt.Errorf("registration requires name, email and password: %w", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != strings.TrimSpace(r.Email) {
		return fmt.Errorf("registration email %q: %w", r.Email, ErrInvalidInput)
	}
	return nil
}

// Validate requires both fields.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return fmt.Errorf("login requires email and password: %w", ErrInvalidInput)
	}
	return nil
}

// Validate requires a city or non-zero coordinates, the latter being what
// "use current location" sends. Neighborhood is optional.
func (l UserLocation) Validate() error {
	if strings.TrimSpace(l.City) != "" {
		return nil
	}
	if l.Coordinates != nil && !l.Coordinates.IsZero() {
		if !l.Coordinates.Valid() {
			return fmt.Errorf("location coordinates out of range: %w", ErrInvalidInput)
		}
		return nil
	}
	return fmt.Errorf("location requires a city or coordinates: %w", ErrInvalidInput)
}

// Label renders the location the way the settings screen shows it.
func (l UserLocation) Label() string {
	if l.City == "" {
		if l.PlaceName != "" {
			return l.PlaceName
		}
		if l.Coordinates != nil {
			return fmt.Sprintf("%.4f, %.4f", l.Coordinates.Latitude, l.Coordinates.Longitude)
		}
	}
	if l.Neighborhood == "" {
		return l.City
	}
	return l.Neighborhood + ", " + l.City
}
