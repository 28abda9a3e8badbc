package server

import (
	"polls/internal/db"
	"polls/internal/web"
)

func questionSummaries(questions []db.Question) []web.QuestionSummary {
	summaries := make([]web.QuestionSummary, 0, len(questions))
	for _, question := range questions {
		summaries = append(summaries, web.QuestionSummary{
			ID:      question.ID,
			Text:    question.QuestionText,
			PubDate: question.PubDate,
		})
	}
	return summaries
}

func questionView(question *db.Question) web.QuestionView {
	view := web.QuestionView{
		ID:      question.ID,
		Text:    question.QuestionText,
		PubDate: question.PubDate,
		Choices: make([]web.ChoiceView, 0, len(question.Choices)),
	}
	for _, choice := range question.Choices {
		view.Choices = append(view.Choices, web.ChoiceView{
			ID:    choice.ID,
			Text:  choice.ChoiceText,
			Votes: choice.Votes,
		})
	}
	return view
}
