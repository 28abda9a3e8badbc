package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventQuestionCreated = "question_created"
	EventVoteCast        = "vote_cast"
)

type Event struct {
	ID         uint           `gorm:"primaryKey"`
	QuestionID uint           `gorm:"index;not null"`
	ChoiceID   *uint          `gorm:"index"`
	Type       string         `gorm:"size:64;not null"`
	Payload    datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"not null"`
}
