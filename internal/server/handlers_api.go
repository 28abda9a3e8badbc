package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"polls/internal/db"

	"github.com/gin-gonic/gin"
)

const (
	apiMaxQuestions  = 100
	apiMaxEvents     = 100
	apiDefaultEvents = 20
)

type questionPayload struct {
	ID      uint      `json:"id"`
	Text    string    `json:"question_text"`
	PubDate time.Time `json:"pub_date"`
}

type choicePayload struct {
	ID    uint   `json:"id"`
	Text  string `json:"choice_text"`
	Votes int    `json:"votes"`
}

type resultsPayload struct {
	Type       string          `json:"type"`
	QuestionID uint            `json:"question_id"`
	Text       string          `json:"question_text"`
	Choices    []choicePayload `json:"choices"`
	TotalVotes int             `json:"total_votes"`
}

type eventResponse struct {
	ID        uint            `json:"id"`
	Type      string          `json:"type"`
	ChoiceID  *uint           `json:"choice_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func resultsPayloadFor(question *db.Question) resultsPayload {
	payload := resultsPayload{
		Type:       "results",
		QuestionID: question.ID,
		Text:       question.QuestionText,
		Choices:    make([]choicePayload, 0, len(question.Choices)),
		TotalVotes: question.TotalVotes(),
	}
	for _, choice := range question.Choices {
		payload.Choices = append(payload.Choices, choicePayload{
			ID:    choice.ID,
			Text:  choice.ChoiceText,
			Votes: choice.Votes,
		})
	}
	return payload
}

func (s *Server) handleAPIQuestions(c *gin.Context) {
	limit := queryLimit(c, s.cfg.IndexLimit, apiMaxQuestions)
	questions, err := s.store.LatestPublished(c.Request.Context(), s.now(), limit)
	if err != nil {
		s.serverError(c, "list questions", err)
		return
	}
	payload := make([]questionPayload, 0, len(questions))
	for _, question := range questions {
		payload = append(payload, questionPayload{
			ID:      question.ID,
			Text:    question.QuestionText,
			PubDate: question.PubDate,
		})
	}
	c.JSON(http.StatusOK, gin.H{"questions": payload})
}

func (s *Server) handleAPIResults(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.handleNotFound(c)
		return
	}
	question, err := s.store.GetQuestion(c.Request.Context(), id)
	if err != nil {
		s.questionError(c, "load results", err)
		return
	}
	c.JSON(http.StatusOK, resultsPayloadFor(question))
}

func (s *Server) handleAPIEvents(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.handleNotFound(c)
		return
	}
	ctx := c.Request.Context()
	if _, err := s.store.GetQuestion(ctx, id); err != nil {
		s.questionError(c, "load question for events", err)
		return
	}
	events, err := s.store.RecentEvents(ctx, id, queryLimit(c, apiDefaultEvents, apiMaxEvents))
	if err != nil {
		s.serverError(c, "list events", err)
		return
	}
	payload := make([]eventResponse, 0, len(events))
	for _, event := range events {
		payload = append(payload, eventResponse{
			ID:        event.ID,
			Type:      event.Type,
			ChoiceID:  event.ChoiceID,
			Payload:   json.RawMessage(event.Payload),
			CreatedAt: event.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": payload})
}

func (s *Server) handleHealthz(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.serverError(c, "health check", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryLimit(c *gin.Context, fallback, max int) int {
	limit := fallback
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			limit = value
		}
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
