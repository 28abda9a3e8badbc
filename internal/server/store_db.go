package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"polls/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dbStore struct {
	db *gorm.DB
}

func NewDBStore(conn *gorm.DB) Store {
	return &dbStore{db: conn}
}

func (s *dbStore) LatestPublished(ctx context.Context, now time.Time, limit int) ([]db.Question, error) {
	return s.ListPublished(ctx, now, 0, limit)
}

func (s *dbStore) ListPublished(ctx context.Context, now time.Time, offset, limit int) ([]db.Question, error) {
	var questions []db.Question
	query := s.db.WithContext(ctx).
		Where("pub_date <= ?", now.UTC()).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "pub_date"}, Desc: true},
			{Column: clause.Column{Name: "id"}, Desc: true},
		}}).
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list published questions: %w", err)
	}
	return questions, nil
}

func (s *dbStore) CountPublished(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&db.Question{}).Where("pub_date <= ?", now.UTC()).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count published questions: %w", err)
	}
	return total, nil
}

func (s *dbStore) GetQuestion(ctx context.Context, id uint) (*db.Question, error) {
	return s.findQuestion(ctx, s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *dbStore) GetPublishedQuestion(ctx context.Context, id uint, now time.Time) (*db.Question, error) {
	return s.findQuestion(ctx, s.db.WithContext(ctx).Where("id = ? AND pub_date <= ?", id, now.UTC()))
}

func (s *dbStore) findQuestion(_ context.Context, query *gorm.DB) (*db.Question, error) {
	var question db.Question
	err := query.
		Preload("Choices", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id asc")
		}).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &question, nil
}

// Vote increments the counter with a single UPDATE so concurrent votes never
// overwrite each other.
func (s *dbStore) Vote(ctx context.Context, questionID, choiceID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Choice{}).
			Where("id = ? AND question_id = ?", choiceID, questionID).
			Update("votes", gorm.Expr("votes + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("increment votes: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrChoiceNotFound
		}
		event := db.Event{
			QuestionID: questionID,
			ChoiceID:   &choiceID,
			Type:       db.EventVoteCast,
			Payload:    eventPayload(votePayload{ChoiceID: choiceID}),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("record vote event: %w", err)
		}
		return nil
	})
}

func (s *dbStore) CreateQuestion(ctx context.Context, question *db.Question) error {
	if question == nil {
		return errors.New("question is nil")
	}
	question.PubDate = question.PubDate.UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("create question: %w", err)
		}
		event := db.Event{
			QuestionID: question.ID,
			Type:       db.EventQuestionCreated,
			Payload: eventPayload(questionCreatedPayload{
				QuestionText: question.QuestionText,
				Choices:      len(question.Choices),
			}),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("record question event: %w", err)
		}
		return nil
	})
}

func (s *dbStore) RecentEvents(ctx context.Context, questionID uint, limit int) ([]db.Event, error) {
	var events []db.Event
	query := s.db.WithContext(ctx).Where("question_id = ?", questionID).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *dbStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
