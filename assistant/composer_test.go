package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danschewy/lexiform/model"
)

func TestCompose_StateMessageComesLast(t *testing.T) {
	history := []model.Message{
		{Role: model.RoleUser, Content: "make me a feedback form"},
		{Role: model.RoleAssistant, Content: "sure, what about..."},
		{Role: model.RoleUser, Content: "add a rating question"},
	}
	form := model.Form{Title: "Feedback", Prompts: []string{"Q1"}}

	msgs, err := Compose(BuilderPrompt, history, Snapshot{Label: "Current form state", Value: form})
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	assert.Equal(t, model.RoleSystem, msgs[0].Role)
	assert.Equal(t, BuilderPrompt, msgs[0].Content)
	assert.Equal(t, history, msgs[1:4])

	last := msgs[4]
	assert.Equal(t, model.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "Current form state: ")
	assert.Contains(t, last.Content, `"title":"Feedback"`)
}

func TestCompose_MultipleSnapshots(t *testing.T) {
	msgs, err := Compose(FillPrompt, nil,
		Snapshot{Label: "Current form", Value: model.Form{Title: "F", Prompts: []string{"Q"}}},
		Snapshot{Label: "Current answers", Value: []any{"A"}})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Contains(t, msgs[1].Content, "Current form: ")
	assert.Contains(t, msgs[1].Content, "\nCurrent answers: [\"A\"]")
}

func TestCompose_NoSnapshots(t *testing.T) {
	msgs, err := Compose(AnalystPrompt, []model.Message{{Role: model.RoleUser, Content: "digest"}})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "digest", msgs[1].Content)
}
