package assistant

import (
	"embed"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/danschewy/lexiform/model"
)

//go:embed schemas/*.json
var schemasFS embed.FS

var (
	formSchema    = mustCompile("schemas/form.schema.json")
	answersSchema = mustCompile("schemas/answers.schema.json")
)

func mustCompile(path string) *jsonschema.Schema {
	data, err := schemasFS.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		panic(err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(path, doc); err != nil {
		panic(err)
	}
	schema, err := c.Compile(path)
	if err != nil {
		panic(err)
	}
	return schema
}

// conforms gates a raw candidate against a schema before any merge is
// attempted. Rejections are silent: the caller falls back to showing the
// raw assistant text.
func conforms(schema *jsonschema.Schema, raw json.RawMessage) bool {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	return schema.Validate(doc) == nil
}

type answersPayload struct {
	Answers []any `json:"answers"`
}

// MergeAnswers applies an extracted answers payload to the current answer
// set. The payload is accepted only if it passes the answers schema and its
// length equals the form's prompt count; otherwise current is returned
// untouched. On acceptance the payload replaces the answers wholesale,
// except that a null slot keeps the previous value at that index.
func MergeAnswers(raw json.RawMessage, form model.Form, current []any) ([]any, bool) {
	if raw == nil || !conforms(answersSchema, raw) {
		return current, false
	}

	var payload answersPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return current, false
	}
	if len(payload.Answers) != len(form.Prompts) {
		return current, false
	}

	merged := make([]any, len(form.Prompts))
	copy(merged, current)
	for i, a := range payload.Answers {
		if a != nil {
			merged[i] = a
		}
	}
	return merged, true
}

// prompt accepts both shapes the model is known to emit: a bare question
// string, or an object carrying text plus an optional type descriptor.
type prompt struct {
	Text    string
	Type    string
	Options []string
}

func (p *prompt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Text = s
		return nil
	}

	var obj struct {
		Text    string   `json:"text"`
		Type    string   `json:"type"`
		Options []string `json:"options"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Text = obj.Text
	p.Type = obj.Type
	p.Options = obj.Options
	return nil
}

type formPayload struct {
	Title          string   `json:"title"`
	Description    *string  `json:"description"`
	Prompts        []prompt `json:"prompts"`
	Questions      []prompt `json:"questions"`
	AllowAnonymous *bool    `json:"allow_anonymous"`
}

// MergeForm applies an extracted form-definition payload to the form being
// composed. Accepted payloads replace title, prompts and question types
// wholesale; description and the anonymity flag only change when the
// payload carries them. Identity, ownership and activation state never
// come from the model.
func MergeForm(raw json.RawMessage, current model.Form) (model.Form, bool) {
	if raw == nil || !conforms(formSchema, raw) {
		return current, false
	}

	var payload formPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return current, false
	}

	prompts := payload.Prompts
	if len(prompts) == 0 {
		prompts = payload.Questions
	}

	merged := current
	merged.Title = payload.Title
	merged.Prompts = make([]string, len(prompts))
	for i, p := range prompts {
		merged.Prompts[i] = p.Text
	}

	merged.QuestionTypes = nil
	for _, p := range prompts {
		if p.Type != "" {
			merged.QuestionTypes = make([]model.QuestionType, len(prompts))
			for i, q := range prompts {
				qt := model.QuestionType{Type: q.Type, Options: q.Options}
				if qt.Type == "" {
					qt.Type = model.QuestionText
				}
				merged.QuestionTypes[i] = qt
			}
			break
		}
	}

	if payload.Description != nil {
		merged.Description = *payload.Description
	}
	if payload.AllowAnonymous != nil {
		merged.AllowAnonymous = *payload.AllowAnonymous
	}

	if merged.Validate() != nil {
		return current, false
	}
	return merged, true
}
