package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

const (
	QuestionText           = "text"
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
)

type Form struct {
	ID             string         `json:"id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Prompts        []string       `json:"prompts"`
	QuestionTypes  []QuestionType `json:"question_types,omitempty"`
	IsActive       bool           `json:"is_active"`
	AllowAnonymous bool           `json:"allow_anonymous"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
}

type QuestionType struct {
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// Validate checks the invariants a form must satisfy before it is stored:
// a title, at least one prompt, and question types (when present) parallel
// to the prompts slice, index for index.
func (f Form) Validate() error {
	if f.Title == "" {
		return errors.New("missing title")
	}
	if len(f.Prompts) == 0 {
		return errors.New("missing prompts")
	}
	if len(f.QuestionTypes) > 0 && len(f.QuestionTypes) != len(f.Prompts) {
		return fmt.Errorf("got %d question types for %d prompts", len(f.QuestionTypes), len(f.Prompts))
	}
	for i, qt := range f.QuestionTypes {
		switch qt.Type {
		case QuestionText, QuestionTrueFalse:
		case QuestionMultipleChoice:
			if len(qt.Options) == 0 {
				return fmt.Errorf("question %d: multiple-choice without options", i+1)
			}
		default:
			return fmt.Errorf("question %d: unknown type %q", i+1, qt.Type)
		}
	}
	return nil
}

// Response holds one respondent's answers, positionally: Answers[i] answers
// Prompts[i] of the parent form. UserID is empty for anonymous submissions.
type Response struct {
	ID        string    `json:"id"`
	FormID    string    `json:"form_id"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Answers   []any     `json:"answers"`
	CreatedAt time.Time `json:"created_at"`
}

type Template struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Prompts     []string  `json:"prompts"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a chat transcript. IDs are local to the
// conversation, assigned when a message is appended, never reused.
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// NewMessageID produces a transcript-local message id: millisecond timestamp
// plus a random suffix, unique enough for list rendering.
func NewMessageID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.Must(uuid.NewV4()).String()[:8])
}
