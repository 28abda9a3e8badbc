package db

import "time"

type Question struct {
	ID           uint      `gorm:"primaryKey"`
	QuestionText string    `gorm:"size:200;not null"`
	PubDate      time.Time `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	Choices      []Choice  `gorm:"constraint:OnDelete:CASCADE"`
	Events       []Event   `gorm:"constraint:OnDelete:CASCADE"`
}

// Published reports whether the question is visible at now.
func (q Question) Published(now time.Time) bool {
	return !q.PubDate.After(now)
}

// TotalVotes sums the votes of the loaded choices.
func (q Question) TotalVotes() int {
	total := 0
	for _, choice := range q.Choices {
		total += choice.Votes
	}
	return total
}
