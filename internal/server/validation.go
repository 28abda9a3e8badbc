package server

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxQuestionTextLength = 200
	maxChoiceTextLength   = 200
	formsetDefaultMaxNum  = 1000
	formsetAbsoluteMax    = 2000
)

var pubDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return normalizeText(fl.Field().String()) != ""
		})
		_ = engine.RegisterValidation("textmax", func(fl validator.FieldLevel) bool {
			limit, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return utf8.RuneCountInString(normalizeText(fl.Field().String())) <= limit
		})
		_ = engine.RegisterValidation("pubdate", func(fl validator.FieldLevel) bool {
			_, err := parsePubDate(fl.Field().String(), time.UTC)
			return err == nil
		})
	})
}

// parsePubDate accepts the date/time layouts offered by HTML date inputs and
// the plain "YYYY-MM-DD HH:MM[:SS]" form, interpreted in loc.
func parsePubDate(raw string, loc *time.Location) (time.Time, error) {
	raw = normalizeText(raw)
	if raw == "" {
		return time.Time{}, errors.New("pub_date is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range pubDateLayouts {
		if value, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return value, nil
		}
	}
	return time.Time{}, errors.New("invalid pub_date")
}

func normalizeText(text string) string {
	return strings.TrimSpace(text)
}
