package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormValidate(t *testing.T) {
	valid := Form{
		Title:   "Feedback",
		Prompts: []string{"Q1", "Q2"},
		QuestionTypes: []QuestionType{
			{Type: QuestionText},
			{Type: QuestionMultipleChoice, Options: []string{"A", "B"}},
		},
	}
	assert.NoError(t, valid.Validate())

	noTypes := Form{Title: "Feedback", Prompts: []string{"Q1", "Q2"}}
	assert.NoError(t, noTypes.Validate(), "question types are optional")

	tests := []struct {
		name string
		form Form
	}{
		{"missing title", Form{Prompts: []string{"Q1"}}},
		{"missing prompts", Form{Title: "T"}},
		{"types length mismatch", Form{
			Title:         "T",
			Prompts:       []string{"Q1", "Q2"},
			QuestionTypes: []QuestionType{{Type: QuestionText}},
		}},
		{"unknown type", Form{
			Title:         "T",
			Prompts:       []string{"Q1"},
			QuestionTypes: []QuestionType{{Type: "rating"}},
		}},
		{"multiple-choice without options", Form{
			Title:         "T",
			Prompts:       []string{"Q1"},
			QuestionTypes: []QuestionType{{Type: QuestionMultipleChoice}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.form.Validate())
		})
	}
}

func TestNewMessageID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewMessageID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
