package server

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"polls/internal/db"

	"gorm.io/datatypes"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrChoiceNotFound   = errors.New("choice not found")
)

// Store is the data access used by the handlers. Question values returned by
// GetQuestion and GetPublishedQuestion carry their choices ordered by id.
type Store interface {
	LatestPublished(ctx context.Context, now time.Time, limit int) ([]db.Question, error)
	ListPublished(ctx context.Context, now time.Time, offset, limit int) ([]db.Question, error)
	CountPublished(ctx context.Context, now time.Time) (int64, error)
	GetQuestion(ctx context.Context, id uint) (*db.Question, error)
	GetPublishedQuestion(ctx context.Context, id uint, now time.Time) (*db.Question, error)
	Vote(ctx context.Context, questionID, choiceID uint) error
	CreateQuestion(ctx context.Context, question *db.Question) error
	RecentEvents(ctx context.Context, questionID uint, limit int) ([]db.Event, error)
	Ping(ctx context.Context) error
}

type votePayload struct {
	ChoiceID   uint   `json:"choice_id"`
	ChoiceText string `json:"choice_text,omitempty"`
}

type questionCreatedPayload struct {
	QuestionText string `json:"question_text"`
	Choices      int    `json:"choices"`
}

func eventPayload(payload any) datatypes.JSON {
	data, err := json.Marshal(payload)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// memoryStore keeps everything in process; it backs the server when no
// database is configured.
type memoryStore struct {
	mu           sync.Mutex
	nextQuestion uint
	nextChoice   uint
	nextEvent    uint
	questions    map[uint]*db.Question
	events       []db.Event
}

func NewMemoryStore() Store {
	return &memoryStore{
		nextQuestion: 1,
		nextChoice:   1,
		nextEvent:    1,
		questions:    make(map[uint]*db.Question),
	}
}

func (s *memoryStore) LatestPublished(ctx context.Context, now time.Time, limit int) ([]db.Question, error) {
	return s.ListPublished(ctx, now, 0, limit)
}

func (s *memoryStore) ListPublished(_ context.Context, now time.Time, offset, limit int) ([]db.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	published := s.publishedLocked(now)
	if offset >= len(published) {
		return []db.Question{}, nil
	}
	published = published[offset:]
	if limit > 0 && len(published) > limit {
		published = published[:limit]
	}
	return published, nil
}

func (s *memoryStore) CountPublished(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.publishedLocked(now))), nil
}

func (s *memoryStore) publishedLocked(now time.Time) []db.Question {
	list := make([]db.Question, 0, len(s.questions))
	for _, question := range s.questions {
		if question.Published(now) {
			summary := *question
			summary.Choices = nil
			list = append(list, summary)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].PubDate.Equal(list[j].PubDate) {
			return list[i].ID > list[j].ID
		}
		return list[i].PubDate.After(list[j].PubDate)
	})
	return list
}

func (s *memoryStore) GetQuestion(_ context.Context, id uint) (*db.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	return cloneQuestion(question), nil
}

func (s *memoryStore) GetPublishedQuestion(ctx context.Context, id uint, now time.Time) (*db.Question, error) {
	question, err := s.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !question.Published(now) {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

func (s *memoryStore) Vote(_ context.Context, questionID, choiceID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[questionID]
	if !ok {
		return ErrChoiceNotFound
	}
	for i := range question.Choices {
		choice := &question.Choices[i]
		if choice.ID != choiceID {
			continue
		}
		choice.Votes++
		choice.UpdatedAt = time.Now().UTC()
		s.appendEventLocked(questionID, &choice.ID, db.EventVoteCast, votePayload{
			ChoiceID:   choice.ID,
			ChoiceText: choice.ChoiceText,
		})
		return nil
	}
	return ErrChoiceNotFound
}

func (s *memoryStore) CreateQuestion(_ context.Context, question *db.Question) error {
	if question == nil {
		return errors.New("question is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	question.ID = s.nextQuestion
	s.nextQuestion++
	question.CreatedAt = now
	question.UpdatedAt = now
	for i := range question.Choices {
		question.Choices[i].ID = s.nextChoice
		s.nextChoice++
		question.Choices[i].QuestionID = question.ID
		question.Choices[i].CreatedAt = now
		question.Choices[i].UpdatedAt = now
	}
	s.questions[question.ID] = cloneQuestion(question)
	s.appendEventLocked(question.ID, nil, db.EventQuestionCreated, questionCreatedPayload{
		QuestionText: question.QuestionText,
		Choices:      len(question.Choices),
	})
	return nil
}

func (s *memoryStore) RecentEvents(_ context.Context, questionID uint, limit int) ([]db.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]db.Event, 0)
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].QuestionID != questionID {
			continue
		}
		events = append(events, s.events[i])
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

func (s *memoryStore) Ping(context.Context) error {
	return nil
}

func (s *memoryStore) appendEventLocked(questionID uint, choiceID *uint, eventType string, payload any) {
	var choiceRef *uint
	if choiceID != nil {
		id := *choiceID
		choiceRef = &id
	}
	s.events = append(s.events, db.Event{
		ID:         s.nextEvent,
		QuestionID: questionID,
		ChoiceID:   choiceRef,
		Type:       eventType,
		Payload:    eventPayload(payload),
		CreatedAt:  time.Now().UTC(),
	})
	s.nextEvent++
}

func cloneQuestion(question *db.Question) *db.Question {
	clone := *question
	clone.Choices = append([]db.Choice(nil), question.Choices...)
	clone.Events = nil
	return &clone
}
