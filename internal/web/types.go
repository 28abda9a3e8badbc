package web

import "time"

type QuestionSummary struct {
	ID      uint
	Text    string
	PubDate time.Time
}

type ChoiceView struct {
	ID    uint
	Text  string
	Votes int
}

type QuestionView struct {
	ID      uint
	Text    string
	PubDate time.Time
	Choices []ChoiceView
}

// TotalVotes sums the votes of all choices.
func (q QuestionView) TotalVotes() int {
	total := 0
	for _, choice := range q.Choices {
		total += choice.Votes
	}
	return total
}

type IndexData struct {
	Questions []QuestionSummary
	Flash     string
}

type PaginationData struct {
	BasePath   string
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type ArchiveData struct {
	Questions  []QuestionSummary
	Pagination PaginationData
}

type DetailData struct {
	Question     QuestionView
	ErrorMessage string
}

type ResultsData struct {
	Question QuestionView
}

// FieldData describes one rendered form input and its validation errors.
type FieldData struct {
	Name      string
	ID        string
	Label     string
	Type      string
	Value     string
	MaxLength int
	Errors    []string
}

type FormsetData struct {
	Prefix        string
	TotalForms    int
	InitialForms  int
	MinNumForms   int
	MaxNumForms   int
	Forms         []FieldData
	NonFormErrors []string
}

type AddQuestionData struct {
	QuestionText FieldData
	PubDate      FieldData
	Formset      FormsetData
}
