package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"polls/internal/db"
	"polls/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	noChoiceMessage    = "You didn't select a choice."
	questionAddedFlash = "Question added."
	archiveMaxPerPage  = 100
)

func (s *Server) handleRoot(c *gin.Context) {
	c.Redirect(http.StatusFound, web.IndexURL())
}

func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()
	questions, err := s.store.LatestPublished(ctx, s.now(), s.cfg.IndexLimit)
	if err != nil {
		s.serverError(c, "list latest questions", err)
		return
	}
	flash := ""
	if s.sessions != nil {
		flash = s.sessions.PopFlash(c.Writer, c.Request)
	}
	render(c, http.StatusOK, web.Index(web.IndexData{
		Questions: questionSummaries(questions),
		Flash:     flash,
	}))
}

func (s *Server) handleArchive(c *gin.Context) {
	ctx := c.Request.Context()
	now := s.now()
	req := parsePagination(c, s.cfg.ArchivePerPage, archiveMaxPerPage)
	total, err := s.store.CountPublished(ctx, now)
	if err != nil {
		s.serverError(c, "count questions", err)
		return
	}
	pagination, offset := paginate(web.ArchiveURL(), req, total)
	questions, err := s.store.ListPublished(ctx, now, offset, pagination.PerPage)
	if err != nil {
		s.serverError(c, "list questions", err)
		return
	}
	render(c, http.StatusOK, web.Archive(web.ArchiveData{
		Questions:  questionSummaries(questions),
		Pagination: pagination,
	}))
}

func (s *Server) handleDetail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.handleNotFound(c)
		return
	}
	question, err := s.store.GetPublishedQuestion(c.Request.Context(), id, s.now())
	if err != nil {
		s.questionError(c, "load question", err)
		return
	}
	render(c, http.StatusOK, web.Detail(web.DetailData{Question: questionView(question)}))
}

func (s *Server) handleResults(c *gin.Context) {
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
	render(c, http.StatusOK, web.Results(web.ResultsData{Question: questionView(question)}))
}

func (s *Server) handleVote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.handleNotFound(c)
		return
	}
	ctx := c.Request.Context()
	question, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		s.questionError(c, "load question for vote", err)
		return
	}
	choiceID, ok := parseChoice(c.PostForm("choice"))
	if !ok {
		s.renderVoteError(c, question)
		return
	}
	if err := s.store.Vote(ctx, question.ID, choiceID); err != nil {
		if errors.Is(err, ErrChoiceNotFound) {
			s.renderVoteError(c, question)
			return
		}
		s.serverError(c, "record vote", err)
		return
	}
	slog.Info("vote recorded", "question_id", question.ID, "choice_id", choiceID)
	s.broadcastResults(c, question.ID)
	c.Redirect(http.StatusFound, web.ResultsURL(question.ID))
}

func (s *Server) renderVoteError(c *gin.Context, question *db.Question) {
	render(c, http.StatusOK, web.Detail(web.DetailData{
		Question:     questionView(question),
		ErrorMessage: noChoiceMessage,
	}))
}

func parseChoice(raw string) (uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func (s *Server) handleAddQuestionForm(c *gin.Context) {
	form := newQuestionForm(s.now().In(s.location()))
	formset := newChoiceFormset(s.cfg.ExtraChoiceForms)
	render(c, http.StatusOK, web.AddQuestion(addQuestionData(form, formset)))
}

func (s *Server) handleAddQuestion(c *gin.Context) {
	form, err := bindQuestionForm(c, s.location())
	if err != nil {
		slog.Warn("add question bind failed", "error", err)
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}
	formset := bindChoiceFormset(c, s.cfg.ExtraChoiceForms)
	if !form.Valid() || !formset.Valid() {
		render(c, http.StatusOK, web.AddQuestion(addQuestionData(form, formset)))
		return
	}

	question := &db.Question{
		QuestionText: form.QuestionText,
		PubDate:      form.PubDate.UTC(),
		Choices:      formset.Choices(),
	}
	if err := s.store.CreateQuestion(c.Request.Context(), question); err != nil {
		s.serverError(c, "create question", err)
		return
	}
	slog.Info("question created", "question_id", question.ID, "choices", len(question.Choices))
	if s.sessions != nil {
		s.sessions.SetFlash(c.Writer, c.Request, questionAddedFlash)
	}
	c.Redirect(http.StatusFound, web.IndexURL())
}

func (s *Server) questionError(c *gin.Context, action string, err error) {
	if errors.Is(err, ErrQuestionNotFound) {
		s.handleNotFound(c)
		return
	}
	s.serverError(c, action, err)
}
