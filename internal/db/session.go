package db

import "time"

// Session holds per-browser state keyed by the polls_session cookie.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Flash     string    `gorm:"size:280"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
