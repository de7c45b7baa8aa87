package models

import "time"

// RefreshToken is a persisted refresh-token record. One row exists per issued
// refresh token; a user may hold many concurrently valid rows (one per
// device/session). Rows are never updated in place — rotation deletes the old
// row and inserts a new one.
type RefreshToken struct {
	ID        int64
	UserID    int64
	ExpiresAt time.Time
}
