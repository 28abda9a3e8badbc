package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"polls/internal/db"
	"polls/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	choiceFormsetPrefix = "choice_set"
	managementFormError = "ManagementForm data is missing or has been tampered with."
	pubDateDisplay      = "2006-01-02 15:04:05"
)

type questionFormInput struct {
	QuestionText string `form:"question_text" binding:"notblank,textmax=200"`
	PubDate      string `form:"pub_date" binding:"notblank,pubdate"`
}

type choiceFormInput struct {
	ChoiceText string `form:"choice_text" binding:"textmax=200"`
}

var questionFieldNames = map[string]string{
	"QuestionText": "question_text",
	"PubDate":      "pub_date",
}

var choiceFieldNames = map[string]string{
	"ChoiceText": "choice_text",
}

type questionForm struct {
	QuestionText string
	PubDateRaw   string
	PubDate      time.Time
	Errors       fieldErrors
}

func newQuestionForm(now time.Time) questionForm {
	return questionForm{
		PubDateRaw: now.Format(pubDateDisplay),
		Errors:     fieldErrors{},
	}
}

// bindQuestionForm binds and validates the question fields of the request.
// The returned error is set only when the request body could not be read.
func bindQuestionForm(c *gin.Context, loc *time.Location) (questionForm, error) {
	registerValidators()
	form := questionForm{Errors: fieldErrors{}}
	var input questionFormInput
	err := c.ShouldBindWith(&input, binding.Form)
	form.QuestionText = input.QuestionText
	form.PubDateRaw = input.PubDate
	if err != nil {
		errs, bindErr := resolveFieldErrors(err, questionFieldNames)
		if bindErr != nil {
			return form, bindErr
		}
		form.Errors = errs
		return form, nil
	}
	pubDate, err := parsePubDate(input.PubDate, loc)
	if err != nil {
		form.Errors.add("pub_date", "Enter a valid date/time.")
		return form, nil
	}
	form.QuestionText = normalizeText(input.QuestionText)
	form.PubDate = pubDate
	return form, nil
}

func (f questionForm) Valid() bool {
	return len(f.Errors) == 0
}

type choiceForm struct {
	ChoiceText string
	Errors     []string
}

// choiceFormset is the inline set of choice forms posted with a question.
// Forms left blank are ignored.
type choiceFormset struct {
	Prefix        string
	InitialForms  int
	Forms         []choiceForm
	NonFormErrors []string
}

func newChoiceFormset(extra int) choiceFormset {
	if extra < 0 {
		extra = 0
	}
	return choiceFormset{
		Prefix: choiceFormsetPrefix,
		Forms:  make([]choiceForm, extra),
	}
}

func (fs choiceFormset) managementField(name string) string {
	return fs.Prefix + "-" + name
}

func (fs choiceFormset) formField(index int, name string) string {
	return fs.Prefix + "-" + strconv.Itoa(index) + "-" + name
}

func bindChoiceFormset(c *gin.Context, extra int) choiceFormset {
	registerValidators()
	fs := newChoiceFormset(0)
	total, totalErr := strconv.Atoi(strings.TrimSpace(c.PostForm(fs.managementField("TOTAL_FORMS"))))
	initial, initialErr := strconv.Atoi(strings.TrimSpace(c.PostForm(fs.managementField("INITIAL_FORMS"))))
	// A new question has no saved choices, so every submitted form is extra.
	if totalErr != nil || initialErr != nil || total < 0 || initial != 0 {
		fs = newChoiceFormset(extra)
		fs.NonFormErrors = append(fs.NonFormErrors, managementFormError)
		return fs
	}
	if total > formsetAbsoluteMax {
		fs.NonFormErrors = append(fs.NonFormErrors, fmt.Sprintf("Please submit at most %d forms.", formsetDefaultMaxNum))
		total = formsetAbsoluteMax
	}
	fs.InitialForms = initial
	fs.Forms = make([]choiceForm, 0, total)
	for i := 0; i < total; i++ {
		raw := c.PostForm(fs.formField(i, "choice_text"))
		form := choiceForm{ChoiceText: raw}
		if err := binding.Validator.ValidateStruct(&choiceFormInput{ChoiceText: raw}); err != nil {
			if errs, resolveErr := resolveFieldErrors(err, choiceFieldNames); resolveErr == nil {
				form.Errors = errs["choice_text"]
			} else {
				form.Errors = []string{"Enter a valid value."}
			}
		}
		fs.Forms = append(fs.Forms, form)
	}
	return fs
}

func (fs choiceFormset) Valid() bool {
	if len(fs.NonFormErrors) > 0 {
		return false
	}
	for _, form := range fs.Forms {
		if len(form.Errors) > 0 {
			return false
		}
	}
	return true
}

// Choices returns unsaved choices for every filled-in form.
func (fs choiceFormset) Choices() []db.Choice {
	choices := make([]db.Choice, 0, len(fs.Forms))
	for _, form := range fs.Forms {
		text := normalizeText(form.ChoiceText)
		if text == "" {
			continue
		}
		choices = append(choices, db.Choice{ChoiceText: text})
	}
	return choices
}

func addQuestionData(qf questionForm, fs choiceFormset) web.AddQuestionData {
	data := web.AddQuestionData{
		QuestionText: web.FieldData{
			Name:      "question_text",
			ID:        "id_question_text",
			Label:     "Question text",
			Value:     qf.QuestionText,
			MaxLength: maxQuestionTextLength,
			Errors:    qf.Errors["question_text"],
		},
		PubDate: web.FieldData{
			Name:   "pub_date",
			ID:     "id_pub_date",
			Label:  "Date published",
			Value:  qf.PubDateRaw,
			Errors: qf.Errors["pub_date"],
		},
		Formset: web.FormsetData{
			Prefix:        fs.Prefix,
			TotalForms:    len(fs.Forms),
			InitialForms:  fs.InitialForms,
			MinNumForms:   0,
			MaxNumForms:   formsetDefaultMaxNum,
			NonFormErrors: fs.NonFormErrors,
		},
	}
	for i, form := range fs.Forms {
		name := fs.formField(i, "choice_text")
		data.Formset.Forms = append(data.Formset.Forms, web.FieldData{
			Name:      name,
			ID:        "id_" + name,
			Label:     "Choice text",
			Value:     form.ChoiceText,
			MaxLength: maxChoiceTextLength,
			Errors:    form.Errors,
		})
	}
	return data
}
