package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type fixtureFile struct {
	Questions []fixtureQuestion `yaml:"questions"`
}

type fixtureQuestion struct {
	Text    string   `yaml:"text"`
	PubDate string   `yaml:"pub_date"`
	Choices []string `yaml:"choices"`
}

var fixtureTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFixtures decodes a YAML fixture document into unsaved questions.
func ParseFixtures(r io.Reader) ([]Question, error) {
	var file fixtureFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	questions := make([]Question, 0, len(file.Questions))
	for i, entry := range file.Questions {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			return nil, fmt.Errorf("fixture %d: text is required", i)
		}
		pubDate, err := parseFixtureTime(entry.PubDate)
		if err != nil {
			return nil, fmt.Errorf("fixture %d: %w", i, err)
		}
		question := Question{QuestionText: text, PubDate: pubDate}
		for _, choiceText := range entry.Choices {
			choiceText = strings.TrimSpace(choiceText)
			if choiceText == "" {
				continue
			}
			question.Choices = append(question.Choices, Choice{ChoiceText: choiceText})
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func parseFixtureTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range fixtureTimeLayouts {
		if value, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return value.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid pub_date %q", raw)
}

// LoadFixtures reads questions from a YAML file and inserts the ones that do
// not exist yet. It returns the number of questions created.
func LoadFixtures(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	questions, err := ParseFixtures(file)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, question := range questions {
		question.PubDate = question.PubDate.UTC()
		err := conn.Transaction(func(tx *gorm.DB) error {
			var existing Question
			result := tx.Where("question_text = ? AND pub_date = ?", question.QuestionText, question.PubDate).Limit(1).Find(&existing)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				return nil
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			created++
			return nil
		})
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
