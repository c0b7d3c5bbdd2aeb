package models

import "time"

// Session stores user login sessions (for logout, invalidation, flash).
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"` // UUID
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	Flash     string    `gorm:"size:255"` // one-shot message, cleared when read
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Active reports whether the session can still authenticate at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && !s.Revoked && now.Before(s.ExpiresAt)
}
