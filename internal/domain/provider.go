package domain

import "context"

// RiverProvider supplies river data. Implementations hand out copies; a
// record returned by Rivers is never mutated afterwards.
type RiverProvider interface {
	Rivers(ctx context.Context) ([]RiverRecord, error)
	// RiverAlert returns nil, nil when the river has no alert.
	RiverAlert(ctx context.Context, riverID string) (*RiverAlert, error)
	Shelters(ctx context.Context) ([]Shelter, error)
	WeatherForecast(ctx context.Context, city string) (string, error)
	// UpdateRiverLevel returns ErrNotFound for an unknown id.
	UpdateRiverLevel(ctx context.Context, riverID string, level float64) (RiverRecord, error)
}

// SessionStore persists accounts and which user is signed in on a device.
type SessionStore interface {
	Register(ctx context.Context, deviceID string, reg Registration) (User, error)
	Login(ctx context.Context, deviceID string, creds Credentials) (User, error)
	Logout(ctx context.Context, deviceID string) error
	// CurrentUser returns nil, nil when nobody is signed in.
	CurrentUser(ctx context.Context, deviceID string) (*User, error)
	UpdateUserLocation(ctx context.Context, userID string, loc UserLocation) (User, error)
}

// FirstAccessStore records whether a device has completed onboarding.
type FirstAccessStore interface {
	IsFirstAccess(ctx context.Context, deviceID string) (bool, error)
	CompleteOnboarding(ctx context.Context, deviceID string) error
}

// LevelPublisher announces applied level updates to downstream consumers.
type LevelPublisher interface {
	PublishLevel(ctx context.Context, update LevelUpdate) error
}
