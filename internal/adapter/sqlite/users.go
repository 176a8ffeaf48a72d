package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userRow struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	Email        string          `db:"email"`
	PasswordHash string          `db:"password_hash"`
	City         string          `db:"city"`
	Neighborhood string          `db:"neighborhood"`
	Latitude     sql.NullFloat64 `db:"latitude"`
	Longitude    sql.NullFloat64 `db:"longitude"`
	PlaceName    string          `db:"place_name"`
}

const userColumns = `u.id, u.name, u.email, u.password_hash, u.city, u.neighborhood, u.latitude, u.longitude, u.place_name`

func (r userRow) toUser() domain.User {
	u := domain.User{ID: r.ID, Name: r.Name, Email: r.Email}
	if r.City == "" && !r.Latitude.Valid {
		return u
	}
	loc := &domain.UserLocation{
		City:         r.City,
		Neighborhood: r.Neighborhood,
		PlaceName:    r.PlaceName,
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		loc.Coordinates = &domain.Geo{Latitude: r.Latitude.Float64, Longitude: r.Longitude.Float64}
	}
	u.Location = loc
	return u
}

// Register creates an account and signs it in on the device.
func (s *Store) Register(ctx context.Context, deviceID string, reg domain.Registration) (domain.User, error) {
	if err := reg.Validate(); err != nil {
		return domain.User{}, err
	}
	email := domain.NormalizeEmail(reg.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.User{}, persistErr("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var existing int
	if err := tx.GetContext(ctx, &existing, "SELECT COUNT(*) FROM users WHERE email = ?", email); err != nil {
		return domain.User{}, persistErr("check email", err)
	}
	if existing > 0 {
		return domain.User{}, fmt.Errorf("register %s: %w", email, domain.ErrDuplicateEmail)
	}

	ts := now()
	user := domain.User{ID: uuid.NewString(), Name: strings.TrimSpace(reg.Name), Email: email}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, string(hash), ts, ts,
	)
	if err != nil {
		return domain.User{}, persistErr("insert user", err)
	}
	if err := signIn(ctx, tx, deviceID, user.ID); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, persistErr("commit registration", err)
	}
	return user, nil
}

// Login checks credentials and signs the user in on the device. Unknown
// emails and wrong passwords both return ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, deviceID string, creds domain.Credentials) (domain.User, error) {
	if err := creds.Validate(); err != nil {
		return domain.User{}, err
	}
	email := domain.NormalizeEmail(creds.Email)

	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users u WHERE u.email = ?", email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("login %s: %w", email, domain.ErrInvalidCredentials)
	}
	if err != nil {
		return domain.User{}, persistErr("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(creds.Password)); err != nil {
		return domain.User{}, fmt.Errorf("login %s: %w", email, domain.ErrInvalidCredentials)
	}

	if err := signIn(ctx, s.db, deviceID, row.ID); err != nil {
		return domain.User{}, err
	}
	return row.toUser(), nil
}

// Logout signs out whoever is signed in on the device. Signing out a device
// with nobody signed in is not an error.
func (s *Store) Logout(ctx context.Context, deviceID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM device_sessions WHERE device_id = ?", deviceID); err != nil {
		return persistErr("delete session", err)
	}
	return nil
}

// CurrentUser returns the user signed in on the device, or nil.
func (s *Store) CurrentUser(ctx context.Context, deviceID string) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM device_sessions d JOIN users u ON u.id = d.user_id WHERE d.device_id = ?",
		deviceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("load current user", err)
	}
	u := row.toUser()
	return &u, nil
}

// UpdateUserLocation replaces the user's saved location.
func (s *Store) UpdateUserLocation(ctx context.Context, userID string, loc domain.UserLocation) (domain.User, error) {
	var lat, lon sql.NullFloat64
	if loc.Coordinates != nil {
		lat = sql.NullFloat64{Float64: loc.Coordinates.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: loc.Coordinates.Longitude, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET city = ?, neighborhood = ?, latitude = ?, longitude = ?, place_name = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(loc.City), strings.TrimSpace(loc.Neighborhood), lat, lon, loc.PlaceName, now(), userID,
	)
	if err != nil {
		return domain.User{}, persistErr("update location", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, persistErr("update location", err)
	}
	if n == 0 {
		return domain.User{}, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	var row userRow
	if err := s.db.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users u WHERE u.id = ?", userID); err != nil {
		return domain.User{}, persistErr("reload user", err)
	}
	return row.toUser(), nil
}

// execer is satisfied by both *sqlx.DB and *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func signIn(ctx context.Context, db execer, deviceID, userID string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO device_sessions (device_id, user_id, signed_in_at) VALUES (?, ?, ?)
		 ON CONFLICT(device_id) DO UPDATE SET user_id = excluded.user_id, signed_in_at = excluded.signed_in_at`,
		deviceID, userID, now(),
	)
	if err != nil {
		return persistErr("save session", err)
	}
	return nil
}
