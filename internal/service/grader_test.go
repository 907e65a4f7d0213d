package service

import (
	"errors"
	"testing"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

func TestGradeShortAnswer(t *testing.T) {
	question := &model.Question{
		Type:          model.TypeShort,
		CorrectAnswer: "Joseon",
	}

	cases := []struct {
		name   string
		answer string
		want   bool
	}{
		{"exact match", "Joseon", true},
		{"lower case", "joseon", true},
		{"upper case", "JOSEON", true},
		{"surrounding whitespace", "  Joseon  ", true},
		{"wrong answer", "Goryeo", false},
		{"empty answer", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Grade(question, tc.answer)
			if err != nil {
				t.Fatalf("Grade(%q) error: %v", tc.answer, err)
			}
			if got != tc.want {
				t.Errorf("Grade(%q) = %v, want %v", tc.answer, got, tc.want)
			}
		})
	}
}

func TestGradeMultipleChoice(t *testing.T) {
	question := &model.Question{
		Type: model.TypeMultiple,
		Choices: []model.Choice{
			{ID: 10, Content: "A"},
			{ID: 11, Content: "B", IsCorrect: true},
			{ID: 12, Content: "C"},
		},
	}

	cases := []struct {
		name   string
		answer string
		want   bool
	}{
		{"correct choice id", "11", true},
		{"correct choice content", "B", true},
		{"choice id with whitespace", " 11 ", true},
		{"wrong choice id", "10", false},
		{"wrong content", "A", false},
		{"content is case sensitive", "b", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Grade(question, tc.answer)
			if err != nil {
				t.Fatalf("Grade(%q) error: %v", tc.answer, err)
			}
			if got != tc.want {
				t.Errorf("Grade(%q) = %v, want %v", tc.answer, got, tc.want)
			}
		})
	}
}

func TestGradeMultipleChoiceWithoutCorrectFlag(t *testing.T) {
	question := &model.Question{
		Type: model.TypeMultiple,
		Choices: []model.Choice{
			{ID: 1, Content: "A"},
			{ID: 2, Content: "B"},
		},
	}
	_, err := Grade(question, "A")
	if !errors.Is(err, util.ErrNoCorrectChoice) {
		t.Fatalf("expected ErrNoCorrectChoice, got %v", err)
	}
}

func TestGradeUnknownType(t *testing.T) {
	question := &model.Question{Type: "ESSAY"}
	_, err := Grade(question, "anything")
	if !errors.Is(err, util.ErrInvalidQuestionType) {
		t.Fatalf("expected ErrInvalidQuestionType, got %v", err)
	}
}
