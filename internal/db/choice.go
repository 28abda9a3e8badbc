package db

import "time"

type Choice struct {
	ID         uint      `gorm:"primaryKey"`
	QuestionID uint      `gorm:"index;not null"`
	ChoiceText string    `gorm:"size:200;not null"`
	Votes      int       `gorm:"not null;default:0;check:chk_choices_votes,votes >= 0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
