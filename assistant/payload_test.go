package assistant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danschewy/lexiform/model"
)

var feedbackForm = model.Form{
	Title:   "Feedback",
	Prompts: []string{"Q1", "Q2"},
}

func TestMergeAnswers_Accepts(t *testing.T) {
	raw := ExtractJSON("Great, here you go:\n```json\n{\"answers\":[\"A1\",\"A2\"]}\n```")
	require.NotNil(t, raw)

	merged, updated := MergeAnswers(raw, feedbackForm, []any{nil, nil})
	assert.True(t, updated)
	assert.Equal(t, []any{"A1", "A2"}, merged)
}

func TestMergeAnswers_RejectsLengthMismatch(t *testing.T) {
	current := []any{"old1", "old2"}

	merged, updated := MergeAnswers(json.RawMessage(`{"answers":["A1"]}`), feedbackForm, current)
	assert.False(t, updated)
	assert.Equal(t, current, merged, "prior answers must survive a rejected payload")
}

func TestMergeAnswers_NullSlotKeepsPreviousValue(t *testing.T) {
	current := []any{"keep me", "replace me"}

	merged, updated := MergeAnswers(json.RawMessage(`{"answers":[null,"new"]}`), feedbackForm, current)
	assert.True(t, updated)
	assert.Equal(t, []any{"keep me", "new"}, merged)
}

func TestMergeAnswers_RejectsWrongShape(t *testing.T) {
	current := []any{"a", "b"}

	for _, raw := range []string{
		`{"answers":"not an array"}`,
		`{"answers":{"Q1":"A1"}}`,
		`{"something":"else"}`,
		`{"answers":[{"nested":"object"},"A2"]}`,
	} {
		merged, updated := MergeAnswers(json.RawMessage(raw), feedbackForm, current)
		assert.False(t, updated, "payload %s must be rejected", raw)
		assert.Equal(t, current, merged)
	}
}

func TestMergeAnswers_NilPayload(t *testing.T) {
	current := []any{"a", "b"}

	merged, updated := MergeAnswers(nil, feedbackForm, current)
	assert.False(t, updated)
	assert.Equal(t, current, merged)
}

func TestMergeAnswers_BooleansAndNumbers(t *testing.T) {
	merged, updated := MergeAnswers(json.RawMessage(`{"answers":[true,4]}`), feedbackForm, []any{nil, nil})
	assert.True(t, updated)
	assert.Equal(t, []any{true, float64(4)}, merged)
}

func TestMergeForm_TypedPrompts(t *testing.T) {
	raw := json.RawMessage(`{
		"title": "Restaurant Feedback",
		"description": "Tell us how it went",
		"prompts": [
			{"text": "Overall rating?", "type": "multiple-choice", "options": ["Good", "Bad"]},
			{"text": "Would you return?", "type": "true-false"},
			{"text": "Anything else?"}
		],
		"allow_anonymous": true
	}`)

	merged, updated := MergeForm(raw, model.Form{ID: "f1", UserID: "bob", IsActive: true})
	require.True(t, updated)

	assert.Equal(t, "Restaurant Feedback", merged.Title)
	assert.Equal(t, "Tell us how it went", merged.Description)
	assert.Equal(t, []string{"Overall rating?", "Would you return?", "Anything else?"}, merged.Prompts)
	require.Len(t, merged.QuestionTypes, 3)
	assert.Equal(t, model.QuestionMultipleChoice, merged.QuestionTypes[0].Type)
	assert.Equal(t, []string{"Good", "Bad"}, merged.QuestionTypes[0].Options)
	assert.Equal(t, model.QuestionTrueFalse, merged.QuestionTypes[1].Type)
	assert.Equal(t, model.QuestionText, merged.QuestionTypes[2].Type, "untyped prompts default to text")
	assert.True(t, merged.AllowAnonymous)

	// identity and lifecycle fields never come from the model
	assert.Equal(t, "f1", merged.ID)
	assert.Equal(t, "bob", merged.UserID)
	assert.True(t, merged.IsActive)
}

func TestMergeForm_PlainStringPrompts(t *testing.T) {
	raw := json.RawMessage(`{"title":"Quick Poll","prompts":["Q1","Q2"]}`)

	merged, updated := MergeForm(raw, model.Form{})
	require.True(t, updated)
	assert.Equal(t, []string{"Q1", "Q2"}, merged.Prompts)
	assert.Nil(t, merged.QuestionTypes)
}

func TestMergeForm_QuestionsAlias(t *testing.T) {
	raw := json.RawMessage(`{"title":"Survey","questions":[{"text":"Q1","type":"text"}]}`)

	merged, updated := MergeForm(raw, model.Form{})
	require.True(t, updated)
	assert.Equal(t, []string{"Q1"}, merged.Prompts)
}

func TestMergeForm_KeepsDescriptionWhenAbsent(t *testing.T) {
	current := model.Form{Title: "Old", Description: "keep this", Prompts: []string{"Q"}}

	merged, updated := MergeForm(json.RawMessage(`{"title":"New","prompts":["Q1"]}`), current)
	require.True(t, updated)
	assert.Equal(t, "keep this", merged.Description)
}

func TestMergeForm_Rejects(t *testing.T) {
	current := model.Form{Title: "Before", Prompts: []string{"Q1"}}

	for _, raw := range []string{
		`{"prompts":["Q1"]}`,
		`{"title":"","prompts":["Q1"]}`,
		`{"title":"T"}`,
		`{"title":"T","prompts":[]}`,
		`{"title":"T","prompts":[{"type":"text"}]}`,
		`{"title":"T","prompts":[{"text":"Q","type":"rating"}]}`,
		`{"title":"T","prompts":[{"text":"Q","type":"multiple-choice"}]}`,
	} {
		merged, updated := MergeForm(json.RawMessage(raw), current)
		assert.False(t, updated, "payload %s must be rejected", raw)
		assert.Equal(t, current, merged)
	}
}
