package routes

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/danschewy/lexiform/app"
	"github.com/danschewy/lexiform/assistant"
	"github.com/danschewy/lexiform/httpx"
	"github.com/danschewy/lexiform/log"
	"github.com/danschewy/lexiform/model"
)

const (
	formUpdatedReply    = "I've updated the form based on your request! Review it and let me know what to change."
	answersUpdatedReply = "I've updated the form with your answers! Feel free to review or ask for more changes."
)

type formChatRequest struct {
	Messages  []model.Message `json:"messages"`
	FormState model.Form      `json:"form_state"`
}

type formChatResponse struct {
	Message   model.Message `json:"message"`
	FormState model.Form    `json:"form_state"`
	Updated   bool          `json:"updated"`
}

// FormChat drives the form-building conversation: the transcript plus the
// current form snapshot go to the model, and any structured payload found
// in the reply is validated and merged into the form. When nothing merges,
// the raw reply is surfaced and the form stays as it was.
func FormChat(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := formChatRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if len(req.Messages) == 0 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.messages", "missing messages")
			return
		}

		msgs, err := assistant.Compose(assistant.BuilderPrompt, req.Messages,
			assistant.Snapshot{Label: "Current form state", Value: req.FormState})
		if err != nil {
			httpx.LogInternalError(w, "assistant.compose", err)
			return
		}

		raw, err := app.Assistant.Complete(r.Context(), msgs)
		if err != nil {
			httpx.LogInternalError(w, "llm.complete", err)
			return
		}

		merged, updated := assistant.MergeForm(assistant.ExtractJSON(raw), req.FormState)
		display := raw
		if updated {
			display = formUpdatedReply
		}

		render.JSON(w, r, formChatResponse{
			Message: model.Message{
				ID:      model.NewMessageID(),
				Role:    model.RoleAssistant,
				Content: display,
			},
			FormState: merged,
			Updated:   updated,
		})
	}
}

type fillAssistRequest struct {
	Messages       []model.Message `json:"messages"`
	FormID         string          `json:"form_id"`
	CurrentAnswers []any           `json:"current_answers"`
}

type fillAssistResponse struct {
	Message model.Message `json:"message"`
	Answers []any         `json:"answers"`
	Updated bool          `json:"updated"`
}

// FillAssist converts a respondent's free-text chat into positional
// answers for an active form. The form definition is loaded server side so
// the model always sees the authoritative prompt list.
func FillAssist(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := fillAssistRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if len(req.Messages) == 0 || req.FormID == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.fields", "missing messages or form_id")
			return
		}

		row := app.QueryRowContext(r.Context(), `
			SELECT `+formColumns+`
			FROM form
			WHERE id = ? AND is_active`,
			req.FormID,
		)
		form, err := scanForm(row.Scan)
		if err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "get_public_form", req.FormID)
			} else {
				httpx.LogInternalError(w, "db.get_public_form", err)
			}
			return
		}
		form.UserID = ""

		current := req.CurrentAnswers
		if len(current) != len(form.Prompts) {
			current = make([]any, len(form.Prompts))
		}

		msgs, err := assistant.Compose(assistant.FillPrompt, req.Messages,
			assistant.Snapshot{Label: "Current form", Value: form},
			assistant.Snapshot{Label: "Current answers", Value: current})
		if err != nil {
			httpx.LogInternalError(w, "assistant.compose", err)
			return
		}

		raw, err := app.Assistant.Complete(r.Context(), msgs)
		if err != nil {
			httpx.LogInternalError(w, "llm.complete", err)
			return
		}

		merged, updated := assistant.MergeAnswers(assistant.ExtractJSON(raw), form, current)
		display := raw
		if updated {
			display = answersUpdatedReply
		}

		render.JSON(w, r, fillAssistResponse{
			Message: model.Message{
				ID:      model.NewMessageID(),
				Role:    model.RoleAssistant,
				Content: display,
			},
			Answers: merged,
			Updated: updated,
		})
	}
}

// SummarizeResponses streams an AI analysis of every response to an owned
// form. Chunks are flushed as they arrive so the caller can render
// progressively.
func SummarizeResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		if err := formOwned(r, app, formId); err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "summarize", formId)
			} else {
				httpx.LogInternalError(w, "db.summarize.owner", err)
			}
			return
		}

		row := app.QueryRowContext(r.Context(), `
			SELECT `+formColumns+`
			FROM form
			WHERE id = ?`,
			formId,
		)
		form, err := scanForm(row.Scan)
		if err != nil {
			httpx.LogInternalError(w, "db.summarize.form", err)
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT id, form_id, user_id, email, answers, created_at
			FROM response
			WHERE form_id = ?
			ORDER BY created_at`,
			formId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.summarize.responses", err)
			return
		}
		defer rows.Close()

		responses := []model.Response{}
		for rows.Next() {
			resp, err := scanResponse(rows.Scan)
			if err != nil {
				httpx.LogInternalError(w, "db.summarize.responses.scan", err)
				return
			}
			responses = append(responses, resp)
		}

		if len(responses) == 0 {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "summarize.empty", "no responses to summarize")
			return
		}

		msgs, err := assistant.Compose(assistant.AnalystPrompt, []model.Message{
			{Role: model.RoleUser, Content: responsesDigest(form, responses)},
		})
		if err != nil {
			httpx.LogInternalError(w, "assistant.compose", err)
			return
		}

		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		flusher, _ := w.(http.Flusher)

		started := false
		err = app.Assistant.Stream(r.Context(), msgs, func(chunk string) error {
			started = true
			if _, err := w.Write([]byte(chunk)); err != nil {
				return err
			}
			if flusher != nil {
				flusher.Flush()
			}
			return nil
		})
		if err != nil {
			if !started {
				httpx.LogInternalError(w, "llm.stream", err)
			} else {
				// headers are gone, all we can do is cut the stream short
				log.Errorf("llm.stream: %s", err)
			}
		}
	}
}

// responsesDigest lays out every response as numbered question/answer
// pairs, the shape the analyst prompt expects.
func responsesDigest(form model.Form, responses []model.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Form: %s\n", form.Title)
	if form.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", form.Description)
	}
	fmt.Fprintf(&b, "Responses: %d\n", len(responses))

	for i, resp := range responses {
		fmt.Fprintf(&b, "\nResponse %d:\n", i+1)
		for j, prompt := range form.Prompts {
			var answer any
			if j < len(resp.Answers) {
				answer = resp.Answers[j]
			}
			fmt.Fprintf(&b, "%d. %s: %v\n", j+1, prompt, answer)
		}
	}
	return b.String()
}
