package assistant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "Great, here you go:\n```json\n{\"answers\":[\"A1\",\"A2\"]}\n```"

	raw := ExtractJSON(text)
	assert.JSONEq(t, `{"answers":["A1","A2"]}`, string(raw))
}

func TestExtractJSON_FencedBlockWithoutTag(t *testing.T) {
	text := "```\n{\"title\":\"Feedback\"}\n```"

	raw := ExtractJSON(text)
	assert.JSONEq(t, `{"title":"Feedback"}`, string(raw))
}

func TestExtractJSON_FencedBlockWinsOverProse(t *testing.T) {
	// the brace-delimited span in the prose must not shadow the fenced block
	text := "The shape is {\"answers\": [...]} in general.\n" +
		"```json\n{\"answers\":[\"yes\"]}\n```\nHope that helps {enjoy}!"

	raw := ExtractJSON(text)
	assert.JSONEq(t, `{"answers":["yes"]}`, string(raw))
}

func TestExtractJSON_GreedyFallback(t *testing.T) {
	text := `Here is the result: {"title":"Poll","prompts":["Q1"]} — done.`

	raw := ExtractJSON(text)
	assert.JSONEq(t, `{"title":"Poll","prompts":["Q1"]}`, string(raw))
}

func TestExtractJSON_NoJSON(t *testing.T) {
	assert.Nil(t, ExtractJSON("Could you tell me more about what the form is for?"))
}

func TestExtractJSON_MalformedCandidate(t *testing.T) {
	assert.Nil(t, ExtractJSON("```json\n{\"answers\": [\"unterminated\"\n```"))
	assert.Nil(t, ExtractJSON("so {not json at all} really"))
}

func TestExtractJSON_FencedArray(t *testing.T) {
	raw := ExtractJSON("```json\n[1,2,3]\n```")

	var got []int
	assert.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, []int{1, 2, 3}, got)
}
