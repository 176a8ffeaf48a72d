package sqlite

import "context"

// IsFirstAccess reports whether the device has never completed onboarding.
func (s *Store) IsFirstAccess(ctx context.Context, deviceID string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM devices WHERE device_id = ?", deviceID); err != nil {
		return true, persistErr("read first access", err)
	}
	return n == 0, nil
}

// CompleteOnboarding records that the device finished onboarding. Repeated
// calls keep the first timestamp.
func (s *Store) CompleteOnboarding(ctx context.Context, deviceID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO devices (device_id, onboarded_at) VALUES (?, ?)",
		deviceID, now(),
	)
	if err != nil {
		return persistErr("save onboarding", err)
	}
	return nil
}
